package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-scheduler-api/internal/middleware"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// tenantFromContext resolves the caller's center from the verified token.
func tenantFromContext(c *gin.Context) (models.Tenant, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.Tenant{}, appErrors.ErrUnauthorized
	}
	tenant, err := models.NewTenant(claims.CenterID)
	if err != nil {
		return models.Tenant{}, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "token has no center scope")
	}
	return tenant, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
