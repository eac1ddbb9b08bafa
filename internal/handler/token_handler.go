package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/response"
	"github.com/gin-gonic/gin"
)

// TokenHandler exposes the read side of the ledger: balances and the
// transaction history for an address.
type TokenHandler struct {
	ledger repository.LedgerRepository
	users  repository.UserRepository
}

func NewTokenHandler(ledger repository.LedgerRepository, users repository.UserRepository) *TokenHandler {
	return &TokenHandler{ledger: ledger, users: users}
}

func (h *TokenHandler) GetBalance(c *gin.Context) {
	address := strings.ToLower(c.Param("address"))
	user, err := h.users.FindByAddress(c.Request.Context(), address)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": user.Address,
		"balance": user.TokenBalance.String(),
	})
}

func (h *TokenHandler) GetTransactions(c *gin.Context) {
	address := strings.ToLower(c.Param("address"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	txs, err := h.ledger.GetTransactionsByAddress(c.Request.Context(), address, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": txs})
}
