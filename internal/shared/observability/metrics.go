package observability

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// 计数器名称
const (
	MetricComputations = "buildpro_metric_computations_total"
	MetricImportRows   = "buildpro_import_rows_total"
	MetricCacheLookups = "buildpro_cache_lookups_total"
	MetricSSEClients   = "buildpro_sse_clients"
	MetricSSEDropped   = "buildpro_sse_dropped_events_total"
)

// Point 单个指标值
type Point struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Snapshot 指标快照，按名称排序
type Snapshot struct {
	Counters []Point `json:"counters"`
	Gauges   []Point `json:"gauges"`
}

type series struct {
	name   string
	labels map[string]string
	value  float64
}

// Registry 进程内计数器/仪表盘，并发安全
type Registry struct {
	mu       sync.Mutex
	counters map[string]series
	gauges   map[string]series
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]series),
		gauges:   make(map[string]series),
	}
}

// Default 全局注册表
var Default = NewRegistry()

func (r *Registry) Add(name string, labels map[string]string, delta float64) {
	if delta == 0 {
		return
	}
	key, lc := seriesKey(name, labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.counters[key]
	if !ok {
		s = series{name: name, labels: lc}
	}
	s.value += delta
	r.counters[key] = s
}

func (r *Registry) Inc(name string, labels map[string]string) {
	r.Add(name, labels, 1)
}

func (r *Registry) Set(name string, labels map[string]string, value float64) {
	key, lc := seriesKey(name, labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gauges[key] = series{name: name, labels: lc, value: value}
}

// Value 读取计数器当前值，不存在返回0
func (r *Registry) Value(name string, labels map[string]string) float64 {
	key, _ := seriesKey(name, labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[key].value
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := Snapshot{
		Counters: points(r.counters),
		Gauges:   points(r.gauges),
	}
	return out
}

func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = make(map[string]series)
	r.gauges = make(map[string]series)
}

// RenderText Prometheus文本格式
func (r *Registry) RenderText() string {
	s := r.Snapshot()
	lines := make([]string, 0, len(s.Counters)+len(s.Gauges))
	for _, p := range append(s.Counters, s.Gauges...) {
		lines = append(lines, promLine(p))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n"
}

// === 业务埋点 ===

// ObserveComputation 记录一次派生指标计算
func ObserveComputation(kind string) {
	Default.Inc(MetricComputations, map[string]string{"kind": kind})
}

// ObserveImport 记录导入结果行数
func ObserveImport(entity string, imported, failed int) {
	Default.Add(MetricImportRows, map[string]string{"entity": entity, "result": "ok"}, float64(imported))
	Default.Add(MetricImportRows, map[string]string{"entity": entity, "result": "failed"}, float64(failed))
}

// ObserveCache 记录缓存命中
func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	Default.Inc(MetricCacheLookups, map[string]string{"result": result})
}

// Handler GET /metrics，?format=prometheus 输出文本格式
func Handler(r *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("format") == "prometheus" {
			c.String(http.StatusOK, r.RenderText())
			return
		}
		c.JSON(http.StatusOK, r.Snapshot())
	}
}

func points(m map[string]series) []Point {
	out := make([]Point, 0, len(m))
	for _, s := range m {
		out = append(out, Point{Name: s.name, Labels: cloneLabels(s.labels), Value: s.value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return labelString(out[i].Labels) < labelString(out[j].Labels)
	})
	return out
}

func seriesKey(name string, labels map[string]string) (string, map[string]string) {
	if len(labels) == 0 {
		return name, nil
	}
	return name + "|" + labelString(labels), cloneLabels(labels)
}

func labelString(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return strings.Join(parts, ",")
}

func cloneLabels(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func promLine(p Point) string {
	v := strconv.FormatFloat(p.Value, 'f', -1, 64)
	if len(p.Labels) == 0 {
		return p.Name + " " + v
	}
	return fmt.Sprintf("%s{%s} %s", p.Name, labelString(p.Labels), v)
}
