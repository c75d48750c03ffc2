package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 事件类型
const (
	EventBidUpdate         = "bid_update"
	EventProjectUpdate     = "project_update"
	EventTaskUpdate        = "task_update"
	EventSubmittalUpdate   = "submittal_update"
	EventRFIUpdate         = "rfi_update"
	EventBudgetUpdate      = "budget_update"
	EventMaintenanceUpdate = "maintenance_update"
	EventExpenseUpdate     = "expense_update"
	EventImportFinished    = "import_finished"
)

// Event 推送给客户端的事件
type Event struct {
	Type string `json:"event"`
	Data string `json:"data"`
}

// Client 一个SSE连接
type Client struct {
	ID        string
	UserID    string
	CompanyID string
	Events    chan Event
}

// Hub 管理SSE连接，事件只投递给同公司的连接
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	observability.Default.Set(observability.MetricSSEClients, nil, float64(len(h.clients)))
	h.logger.Debug("SSE client registered",
		zap.String("client_id", client.ID),
		zap.String("company_id", client.CompanyID),
		zap.Int("total", len(h.clients)))
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		observability.Default.Set(observability.MetricSSEClients, nil, float64(len(h.clients)))
		h.logger.Debug("SSE client unregistered", zap.String("client_id", clientID), zap.Int("total", len(h.clients)))
	}
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToCompany 缓冲区满的连接直接丢弃事件，不阻塞写请求
func (h *Hub) SendToCompany(companyID string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, client := range h.clients {
		if client.CompanyID != companyID {
			continue
		}
		select {
		case client.Events <- event:
			delivered++
		default:
			observability.Default.Inc(observability.MetricSSEDropped, nil)
			h.logger.Warn("SSE client buffer full, skipping event", zap.String("client_id", client.ID))
		}
	}
	return delivered
}

// Publish 记录变更事件: {"id":..,"action":..}
func (h *Hub) Publish(companyID, eventType, recordID, action string) {
	if h == nil {
		return
	}
	data, _ := json.Marshal(map[string]string{"id": recordID, "action": action})
	h.SendToCompany(companyID, Event{Type: eventType, Data: string(data)})
}

// Stream GET /api/v1/events
func (h *Hub) Stream(c *gin.Context) {
	userID := c.GetString("user_id")
	companyID := c.GetString("company_id")
	clientID := fmt.Sprintf("%s_%d", userID, time.Now().UnixNano())

	client := &Client{
		ID:        clientID,
		UserID:    userID,
		CompanyID: companyID,
		Events:    make(chan Event, 64),
	}
	h.Register(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"client_id\":%q}\n\n", clientID)
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			h.Unregister(clientID)
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			c.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
