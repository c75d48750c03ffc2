package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Repositories CRM仓库集合
type Repositories struct {
	Bid *BidRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Bid: NewBidRepository(db),
	}
}
