package response

import (
	"net/http"

	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/gin-gonic/gin"
)

// GetWalletAddress retrieves the authenticated wallet address from the context
func GetWalletAddress(c *gin.Context) (string, error) {
	address, exists := c.Get("wallet_address")
	if !exists {
		return "", apperror.ErrUnauthorized
	}

	addr, ok := address.(string)
	if !ok || addr == "" {
		return "", apperror.ErrUnauthorized
	}

	return addr, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError && logger.Sugar != nil {
		logger.Sugar.Errorw("internal error", "path", c.FullPath(), "err", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
