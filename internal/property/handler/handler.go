package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bitfantasy/nimo-build/internal/property/repository"
	"github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// Handlers 物业处理器集合
type Handlers struct {
	Property    *PropertyHandler
	Maintenance *MaintenanceHandler
	Expense     *ExpenseHandler
}

func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Property:    NewPropertyHandler(svcs.Property),
		Maintenance: NewMaintenanceHandler(svcs.Maintenance),
		Expense:     NewExpenseHandler(svcs.Expense),
	}
}

// RegisterRoutes 注册物业管理路由
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		properties.GET("", h.Property.List)
		properties.POST("", h.Property.Create)
		properties.GET("/:id", h.Property.Get)
		properties.PUT("/:id", h.Property.Update)
		properties.DELETE("/:id", h.Property.Delete)
	}

	maintenance := rg.Group("/maintenance-requests")
	{
		maintenance.GET("", h.Maintenance.List)
		maintenance.GET("/kpis", h.Maintenance.KPIs)
		maintenance.POST("/import", h.Maintenance.Import)
		maintenance.POST("", h.Maintenance.Create)
		maintenance.GET("/:id", h.Maintenance.Get)
		maintenance.PUT("/:id", h.Maintenance.Update)
		maintenance.DELETE("/:id", h.Maintenance.Delete)
	}

	expenses := rg.Group("/property-expenses")
	{
		expenses.GET("", h.Expense.List)
		expenses.GET("/summary", h.Expense.Summary)
		expenses.GET("/export", h.Expense.Export)
		expenses.POST("/import", h.Expense.Import)
		expenses.POST("", h.Expense.Create)
		expenses.GET("/:id", h.Expense.Get)
		expenses.PUT("/:id", h.Expense.Update)
		expenses.DELETE("/:id", h.Expense.Delete)
	}
}

// handleError 按错误类型返回响应
func handleError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, notFoundMsg)
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, "参数错误: "+err.Error())
	default:
		response.InternalError(c, failMsg+": "+err.Error())
	}
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return false
	}
	return true
}

type importFunc func(c *gin.Context, propertyID, fileName string, f io.Reader) (*importer.Result, error)

// handleImport 读取multipart文件并调用导入；property_id表单字段为默认物业
func handleImport(c *gin.Context, failMsg string, run importFunc) {
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

	res, err := run(c, c.PostForm("property_id"), fh.Filename, f)
	if err != nil {
		handleError(c, err, "物业不存在", failMsg)
		return
	}
	response.Success(c, res)
}

// sendReport 返回xlsx，归档key放在响应头
func sendReport(c *gin.Context, fileName, key string, data []byte) {
	if key != "" {
		c.Header("X-Report-Key", key)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, report.ContentType, data)
}
