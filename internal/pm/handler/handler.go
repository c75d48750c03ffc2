package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-build/internal/pm/repository"
	"github.com/bitfantasy/nimo-build/internal/pm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// Handlers PM处理器集合
type Handlers struct {
	Project   *ProjectHandler
	Schedule  *ScheduleHandler
	Document  *DocumentHandler
	Financial *FinancialHandler
	DailyLog  *DailyLogHandler
}

func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Project:   NewProjectHandler(svcs.Project),
		Schedule:  NewScheduleHandler(svcs.Schedule),
		Document:  NewDocumentHandler(svcs.Document),
		Financial: NewFinancialHandler(svcs.Financial),
		DailyLog:  NewDailyLogHandler(svcs.DailyLog),
	}
}

// RegisterRoutes 注册项目管理路由
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.POST("", h.Project.Create)
		projects.GET("/:id", h.Project.Get)
		projects.PUT("/:id", h.Project.Update)
		projects.DELETE("/:id", h.Project.Delete)
		projects.GET("/:id/budget", h.Project.Budget)

		projects.GET("/:id/schedule", h.Schedule.Schedule)
		projects.GET("/:id/schedule/export", h.Schedule.Export)
		projects.GET("/:id/phases", h.Schedule.ListPhases)
		projects.POST("/:id/phases", h.Schedule.CreatePhase)
		projects.GET("/:id/tasks", h.Schedule.ListTasks)
		projects.POST("/:id/tasks", h.Schedule.CreateTask)

		projects.GET("/:id/submittals", h.Document.SubmittalLog)
		projects.POST("/:id/submittals", h.Document.CreateSubmittal)
		projects.GET("/:id/rfis", h.Document.RFILog)
		projects.POST("/:id/rfis", h.Document.CreateRFI)

		projects.GET("/:id/change-orders", h.Financial.ListChangeOrders)
		projects.POST("/:id/change-orders", h.Financial.CreateChangeOrder)
		projects.GET("/:id/budget-lines", h.Financial.ListBudgetLines)
		projects.POST("/:id/budget-lines", h.Financial.CreateBudgetLine)

		projects.GET("/:id/daily-logs", h.DailyLog.List)
		projects.POST("/:id/daily-logs", h.DailyLog.Create)
	}

	phases := rg.Group("/phases")
	{
		phases.PUT("/:id", h.Schedule.UpdatePhase)
		phases.DELETE("/:id", h.Schedule.DeletePhase)
	}

	tasks := rg.Group("/tasks")
	{
		tasks.GET("/:id", h.Schedule.GetTask)
		tasks.PUT("/:id", h.Schedule.UpdateTask)
		tasks.DELETE("/:id", h.Schedule.DeleteTask)
	}

	submittals := rg.Group("/submittals")
	{
		submittals.GET("/:id", h.Document.GetSubmittal)
		submittals.PUT("/:id", h.Document.UpdateSubmittal)
		submittals.DELETE("/:id", h.Document.DeleteSubmittal)
	}

	rfis := rg.Group("/rfis")
	{
		rfis.GET("/:id", h.Document.GetRFI)
		rfis.PUT("/:id", h.Document.UpdateRFI)
		rfis.DELETE("/:id", h.Document.DeleteRFI)
	}

	changeOrders := rg.Group("/change-orders")
	{
		changeOrders.PUT("/:id", h.Financial.UpdateChangeOrder)
		changeOrders.DELETE("/:id", h.Financial.DeleteChangeOrder)
	}

	budgetLines := rg.Group("/budget-lines")
	{
		budgetLines.PUT("/:id", h.Financial.UpdateBudgetLine)
		budgetLines.DELETE("/:id", h.Financial.DeleteBudgetLine)
	}

	dailyLogs := rg.Group("/daily-logs")
	{
		dailyLogs.GET("/:id", h.DailyLog.Get)
		dailyLogs.PUT("/:id", h.DailyLog.Update)
		dailyLogs.DELETE("/:id", h.DailyLog.Delete)
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

// bindJSON 绑定请求体，失败时直接返回400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return false
	}
	return true
}
