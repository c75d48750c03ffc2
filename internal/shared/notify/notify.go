package notify

import (
	"context"

	"github.com/bitfantasy/nimo-build/internal/shared/cache"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"go.uber.org/zap"
)

// Notifier 记录变更后失效公司缓存并推送SSE事件。失败只记日志，不影响写请求
type Notifier struct {
	cache  *cache.Cache
	hub    *sse.Hub
	logger *zap.Logger
}

func New(c *cache.Cache, hub *sse.Hub, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{cache: c, hub: hub, logger: logger}
}

// Changed 一条记录发生变更
func (n *Notifier) Changed(ctx context.Context, companyID, eventType, recordID, action string) {
	if n == nil {
		return
	}
	if err := n.cache.InvalidateCompany(ctx, companyID); err != nil {
		n.logger.Warn("Failed to invalidate company cache",
			zap.String("company_id", companyID),
			zap.String("event", eventType),
			zap.Error(err))
	}
	n.hub.Publish(companyID, eventType, recordID, action)
}
