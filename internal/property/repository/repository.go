package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 物业仓库集合
type Repositories struct {
	Property    *PropertyRepository
	Maintenance *MaintenanceRepository
	Expense     *ExpenseRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Property:    NewPropertyRepository(db),
		Maintenance: NewMaintenanceRepository(db),
		Expense:     NewExpenseRepository(db),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
