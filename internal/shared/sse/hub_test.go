package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(id, company string, buf int) *Client {
	return &Client{ID: id, CompanyID: company, Events: make(chan Event, buf)}
}

func TestPublishScopedToCompany(t *testing.T) {
	h := NewHub(nil)
	a := newClient("a", "c1", 4)
	b := newClient("b", "c2", 4)
	h.Register(a)
	h.Register(b)

	h.Publish("c1", EventBidUpdate, "bid-1", "update")

	require.Len(t, a.Events, 1)
	ev := <-a.Events
	assert.Equal(t, EventBidUpdate, ev.Type)
	assert.JSONEq(t, `{"id":"bid-1","action":"update"}`, ev.Data)
	assert.Len(t, b.Events, 0)
}

func TestFullBufferDropsEvent(t *testing.T) {
	h := NewHub(nil)
	c := newClient("a", "c1", 1)
	h.Register(c)

	assert.Equal(t, 1, h.SendToCompany("c1", Event{Type: "x"}))
	assert.Equal(t, 0, h.SendToCompany("c1", Event{Type: "y"}))
}

func TestUnregisterClosesChannel(t *testing.T) {
	h := NewHub(nil)
	c := newClient("a", "c1", 1)
	h.Register(c)
	assert.Equal(t, 1, h.Count())

	h.Unregister("a")
	_, ok := <-c.Events
	assert.False(t, ok)
	assert.Equal(t, 0, h.Count())

	h.Unregister("a")
}

func TestNilHubPublish(t *testing.T) {
	var h *Hub
	h.Publish("c1", EventTaskUpdate, "t", "create")
}

func TestStreamWritesConnectedEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHub(nil)

	r := gin.New()
	r.GET("/events", func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Set("company_id", "c1")
		h.Stream(c)
	})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.True(t, strings.HasPrefix(w.Body.String(), "event: connected\n"))
	assert.Equal(t, 0, h.Count())
}
