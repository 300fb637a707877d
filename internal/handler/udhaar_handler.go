package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"bachat_backend/internal/middleware"
	"bachat_backend/internal/model"
	"bachat_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UdhaarHandler handles udhaar related requests
type UdhaarHandler struct {
	service service.UdhaarService
	log     *slog.Logger
}

func NewUdhaarHandler(s service.UdhaarService, log *slog.Logger) *UdhaarHandler {
	return &UdhaarHandler{service: s, log: log}
}

func (h *UdhaarHandler) CreateUdhaar(c *gin.Context, user *model.User) {
	var req model.CreateUdhaarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Type, person name, and amount are required")
		return
	}

	entry, err := h.service.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *UdhaarHandler) GetUdhaar(c *gin.Context, user *model.User) {
	var filters model.UdhaarFilters
	if typeParam := c.Query("type"); typeParam != "" {
		t := model.UdhaarType(typeParam)
		filters.Type = &t
	}
	if settledParam := c.Query("isSettled"); settledParam != "" {
		settled, err := strconv.ParseBool(settledParam)
		if err != nil {
			badRequest(c, "isSettled must be true or false")
			return
		}
		filters.IsSettled = &settled
	}

	entries, err := h.service.List(c.Request.Context(), user.ID, filters)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *UdhaarHandler) UpdateUdhaar(c *gin.Context, user *model.User) {
	var req model.UpdateUdhaarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	entry, err := h.service.Update(c.Request.Context(), c.Param("id"), user.ID, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *UdhaarHandler) DeleteUdhaar(c *gin.Context, user *model.User) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Udhaar deleted successfully"})
}

func (h *UdhaarHandler) RegisterUdhaarRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	udhaar := rg.Group("/udhaar", authMW)
	{
		udhaar.POST("", middleware.WithUser(h.CreateUdhaar))
		udhaar.GET("", middleware.WithUser(h.GetUdhaar))
		udhaar.PUT("/:id", middleware.WithUser(h.UpdateUdhaar))
		udhaar.DELETE("/:id", middleware.WithUser(h.DeleteUdhaar))
	}
}
