package notify

import (
	"context"
	"testing"

	"github.com/bitfantasy/nimo-build/internal/shared/cache"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangedPublishesToCompany(t *testing.T) {
	hub := sse.NewHub(nil)
	client := &sse.Client{ID: "a", CompanyID: "c1", Events: make(chan sse.Event, 1)}
	hub.Register(client)

	n := New(cache.New(nil, "test"), hub, nil)
	n.Changed(context.Background(), "c1", sse.EventExpenseUpdate, "e1", "create")

	require.Len(t, client.Events, 1)
	assert.Equal(t, sse.EventExpenseUpdate, (<-client.Events).Type)
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	n.Changed(context.Background(), "c1", sse.EventBidUpdate, "b1", "delete")
}
