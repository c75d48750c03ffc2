package importer

import "fmt"

// RowError 单行导入错误
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result 导入结果
type Result struct {
	BatchID   string     `json:"batch_id,omitempty"`
	Total     int        `json:"total"`
	Imported  int        `json:"imported"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors"`
	ObjectKey string     `json:"object_key,omitempty"`
}

// Fail 记录失败行
func (r *Result) Fail(line int, err error) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Line: line, Message: err.Error()})
}

// OK 记录成功行
func (r *Result) OK() {
	r.Imported++
}

func (r *Result) String() string {
	return fmt.Sprintf("total=%d imported=%d failed=%d", r.Total, r.Imported, r.Failed)
}
