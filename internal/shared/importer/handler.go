package importer

import (
	"strconv"

	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// BatchHandler 导入历史查询
type BatchHandler struct {
	repo *BatchRepository
}

func NewBatchHandler(repo *BatchRepository) *BatchHandler {
	return &BatchHandler{repo: repo}
}

func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/import-batches", h.List)
}

// List 最近导入批次
// GET /api/v1/import-batches?entity=bids&limit=20
func (h *BatchHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, err := h.repo.List(c.Request.Context(), response.GetCompanyID(c), c.Query("entity"), limit)
	if err != nil {
		response.InternalError(c, "获取导入记录失败: "+err.Error())
		return
	}
	response.Success(c, items)
}
