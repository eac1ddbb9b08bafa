package handler

import (
	"net/http"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/service"
	"github.com/Hoblayerta/LENSNOMICS/pkg/response"
	"github.com/Hoblayerta/LENSNOMICS/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChallengeHandler struct {
	service service.ChallengeService
}

func NewChallengeHandler(service service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{service: service}
}

func (h *ChallengeHandler) List(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context(), viewerAddress(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChallengeHandler) UpdateProgress(c *gin.Context) {
	address, err := response.GetWalletAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.UpdateProgress(c.Request.Context(), address, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
