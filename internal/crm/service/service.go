package service

import (
	"errors"
	"time"

	"github.com/bitfantasy/nimo-build/internal/crm/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/notify"
	"github.com/bitfantasy/nimo-build/internal/shared/storage"
	"go.uber.org/zap"
)

var (
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
)

// Deps 服务依赖，Store/Notifier可为nil
type Deps struct {
	Batches  *importer.BatchRepository
	Store    *storage.Store
	Notifier *notify.Notifier
	Logger   *zap.Logger
	MaxRows  int
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Services CRM服务集合
type Services struct {
	Bid *BidService
}

func NewServices(repos *repository.Repositories, deps Deps) *Services {
	return &Services{
		Bid: NewBidService(repos.Bid, deps),
	}
}
