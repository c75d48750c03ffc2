package handler

import (
	"fmt"
	"net/http"

	"github.com/bitfantasy/nimo-build/internal/crm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// BidHandler 投标处理器
type BidHandler struct {
	svc *service.BidService
}

func NewBidHandler(svc *service.BidService) *BidHandler {
	return &BidHandler{svc: svc}
}

func listFilter(c *gin.Context) service.BidListFilter {
	f := service.BidListFilter{
		Status:     c.Query("status"),
		Search:     c.Query("search"),
		BidType:    c.Query("bid_type"),
		Window:     metrics.Window(c.Query("window")),
		MarginTier: metrics.MarginTier(c.Query("margin_tier")),
	}
	// due_soon=true 为 window=due_soon 的简写
	if c.Query("due_soon") == "true" {
		f.Window = metrics.WindowDueSoon
	}
	return f
}

// List 投标列表
// GET /api/v1/bids?status=xxx&search=xxx&window=due_soon&margin_tier=low&page=1&page_size=20
func (h *BidHandler) List(c *gin.Context) {
	page, pageSize := response.GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), response.GetCompanyID(c), listFilter(c), page, pageSize)
	if err != nil {
		response.InternalError(c, "获取投标列表失败: "+err.Error())
		return
	}
	response.Paged(c, items, total, page, pageSize)
}

// Summary 投标管道汇总
// GET /api/v1/bids/summary
func (h *BidHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), response.GetCompanyID(c), listFilter(c))
	if err != nil {
		response.InternalError(c, "获取投标汇总失败: "+err.Error())
		return
	}
	response.Success(c, summary)
}

// Get 投标详情
// GET /api/v1/bids/:id
func (h *BidHandler) Get(c *gin.Context) {
	bid, err := h.svc.Get(c.Request.Context(), response.GetCompanyID(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "投标不存在", "获取投标失败")
		return
	}
	response.Success(c, bid)
}

// Create 创建投标
// POST /api/v1/bids
func (h *BidHandler) Create(c *gin.Context) {
	var req service.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	bid, err := h.svc.Create(c.Request.Context(), response.GetCompanyID(c), response.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "投标不存在", "创建投标失败")
		return
	}
	response.Created(c, bid)
}

// Update 更新投标
// PUT /api/v1/bids/:id
func (h *BidHandler) Update(c *gin.Context) {
	var req service.UpdateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	bid, err := h.svc.Update(c.Request.Context(), response.GetCompanyID(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "投标不存在", "更新投标失败")
		return
	}
	response.Success(c, bid)
}

// Delete 删除投标
// DELETE /api/v1/bids/:id
func (h *BidHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), response.GetCompanyID(c), c.Param("id")); err != nil {
		handleError(c, err, "投标不存在", "删除投标失败")
		return
	}
	response.Success(c, nil)
}

// Import 导入投标
// POST /api/v1/bids/import (multipart file)
func (h *BidHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "请上传文件")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "无法读取文件: "+err.Error())
		return
	}
	defer f.Close()

	res, err := h.svc.Import(c.Request.Context(), response.GetCompanyID(c), response.GetUserID(c), fh.Filename, f)
	if err != nil {
		handleError(c, err, "投标不存在", "导入投标失败")
		return
	}
	response.Success(c, res)
}

// Export 导出投标xlsx
// GET /api/v1/bids/export
func (h *BidHandler) Export(c *gin.Context) {
	data, key, err := h.svc.Export(c.Request.Context(), response.GetCompanyID(c), listFilter(c))
	if err != nil {
		response.InternalError(c, "导出投标失败: "+err.Error())
		return
	}
	if key != "" {
		c.Header("X-Report-Key", key)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, "bids.xlsx"))
	c.Data(http.StatusOK, report.ContentType, data)
}
