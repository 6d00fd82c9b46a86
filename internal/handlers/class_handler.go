package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/services"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ClassHandler struct {
	BaseHandler
	classService services.ClassService
}

func NewClassHandler(classService services.ClassService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler:  NewBaseHandler(logger),
		classService: classService,
	}
}

// CreateClass creates a class with optional initial members
// @Router /classes [post]
func (h *ClassHandler) CreateClass(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req services.CreateClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

// AddMembers enrols users in a class
// @Router /classes/{id}/members [post]
func (h *ClassHandler) AddMembers(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req services.ClassMembersRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.classService.AddMembers(c.Request.Context(), id, &req, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveMember removes one user from a class
// @Router /classes/{id}/members/{user_id} [delete]
func (h *ClassHandler) RemoveMember(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID := h.parseStringParam(c, "user_id")
	if userID == "" {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.classService.RemoveMember(c.Request.Context(), id, userID, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
