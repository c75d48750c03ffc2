package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderText(t *testing.T) {
	r := NewRegistry()
	r.Add(MetricImportRows, map[string]string{"result": "ok", "entity": "bid"}, 3)
	r.Set(MetricSSEClients, nil, 2)

	out := r.RenderText()
	assert.Contains(t, out, `buildpro_import_rows_total{entity="bid",result="ok"} 3`)
	assert.Contains(t, out, "buildpro_sse_clients 2")
}

func TestZeroDeltaIgnored(t *testing.T) {
	r := NewRegistry()
	r.Add("noop", nil, 0)
	assert.Empty(t, r.Snapshot().Counters)
}

func TestConcurrentInc(t *testing.T) {
	r := NewRegistry()
	labels := map[string]string{"kind": "margin"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Inc(MetricComputations, labels)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50.0, r.Value(MetricComputations, labels))
}

func TestHandlerFormats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRegistry()
	r.Inc(MetricCacheLookups, map[string]string{"result": "hit"})

	router := gin.New()
	router.GET("/metrics", Handler(r))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"counters"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics?format=prometheus", nil))
	assert.True(t, strings.HasPrefix(w.Body.String(), "buildpro_cache_lookups_total"))
}
