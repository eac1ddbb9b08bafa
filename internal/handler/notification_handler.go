package handler

import (
	"net/http"
	"strconv"

	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/internal/service"
	"github.com/Hoblayerta/LENSNOMICS/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	service service.NotificationService
	users   repository.UserRepository
}

func NewNotificationHandler(service service.NotificationService, users repository.UserRepository) *NotificationHandler {
	return &NotificationHandler{service: service, users: users}
}

func (h *NotificationHandler) currentUserID(c *gin.Context) (uuid.UUID, error) {
	address, err := response.GetWalletAddress(c)
	if err != nil {
		return uuid.Nil, err
	}
	user, err := h.users.FindByAddress(c.Request.Context(), address)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := h.currentUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.service.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, err := h.currentUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := h.currentUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all marked as read"})
}

func (h *NotificationHandler) CountUnread(c *gin.Context) {
	userID, err := h.currentUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}
