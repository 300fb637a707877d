package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bachat_backend/internal/middleware"
	"bachat_backend/internal/model"
	"bachat_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler handles expense related requests
type ExpenseHandler struct {
	service service.ExpenseService
	log     *slog.Logger
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(s service.ExpenseService, log *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{service: s, log: log}
}

// queryTime parses an optional date query parameter
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := model.ParseFlexTime(raw)
	if err != nil {
		return nil, fmt.Errorf("Invalid date format for '%s', use YYYY-MM-DD", name)
	}
	return &t, nil
}

func expenseFilters(c *gin.Context) (model.ExpenseFilters, error) {
	var filters model.ExpenseFilters
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}
	var err error
	if filters.StartDate, err = queryTime(c, "startDate"); err != nil {
		return filters, err
	}
	if filters.EndDate, err = queryTime(c, "endDate"); err != nil {
		return filters, err
	}
	return filters, nil
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context, user *model.User) {
	var req model.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Amount and category are required")
		return
	}

	expense, err := h.service.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) GetExpenses(c *gin.Context, user *model.User) {
	filters, err := expenseFilters(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	expenses, err := h.service.List(c.Request.Context(), user.ID, filters)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context, user *model.User) {
	var req model.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	expense, err := h.service.Update(c.Request.Context(), c.Param("id"), user.ID, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context, user *model.User) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

func (h *ExpenseHandler) GetStats(c *gin.Context, user *model.User) {
	var dateRange model.DateRange
	var err error
	if dateRange.Start, err = queryTime(c, "startDate"); err != nil {
		badRequest(c, err.Error())
		return
	}
	if dateRange.End, err = queryTime(c, "endDate"); err != nil {
		badRequest(c, err.Error())
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), user.ID, dateRange)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportExpenses streams the filtered expense list as a CSV attachment
func (h *ExpenseHandler) ExportExpenses(c *gin.Context, user *model.User) {
	filters, err := expenseFilters(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	csvData, err := h.service.ExportCSV(c.Request.Context(), user.ID, filters)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	fileName := fmt.Sprintf("expenses_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", csvData.Bytes())
}

// RegisterExpenseRoutes registers expense routes behind authMW
func (h *ExpenseHandler) RegisterExpenseRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	expenses := rg.Group("/expenses", authMW)
	{
		expenses.POST("", middleware.WithUser(h.CreateExpense))
		expenses.GET("", middleware.WithUser(h.GetExpenses))
		expenses.GET("/stats", middleware.WithUser(h.GetStats))
		expenses.GET("/export", middleware.WithUser(h.ExportExpenses))
		expenses.PUT("/:id", middleware.WithUser(h.UpdateExpense))
		expenses.DELETE("/:id", middleware.WithUser(h.DeleteExpense))
	}
}
