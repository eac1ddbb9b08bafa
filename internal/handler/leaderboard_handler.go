package handler

import (
	"net/http"
	"strconv"

	"github.com/Hoblayerta/LENSNOMICS/internal/service"
	"github.com/Hoblayerta/LENSNOMICS/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service service.LeaderboardService
}

func NewLeaderboardHandler(service service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.service.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LeaderboardHandler) GetUserProgress(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address required"})
		return
	}

	resp, err := h.service.GetUserProgress(c.Request.Context(), address)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LeaderboardHandler) GetMyProgress(c *gin.Context) {
	address, err := response.GetWalletAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetUserProgress(c.Request.Context(), address)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
