package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studypath/studypath-api/internal/middleware"
	"github.com/studypath/studypath-api/internal/models"
	"github.com/studypath/studypath-api/internal/service"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
	"github.com/studypath/studypath-api/pkg/response"
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

// actorFromContext returns the caller, or a zero Actor for anonymous requests.
func actorFromContext(c *gin.Context) service.Actor {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{UserID: claims.UserID, DisplayName: claims.DisplayName}
}

// requireActor writes 401 and reports false when the request is anonymous.
func requireActor(c *gin.Context) (service.Actor, bool) {
	actor := actorFromContext(c)
	if actor.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return actor, false
	}
	return actor, true
}

// readBody drains the request body, mapping an exceeded limit onto 413.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, appErrors.ErrPayloadTooLarge
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read request body")
	}
	return raw, nil
}

// bindJSON decodes the body into dst with the same size handling as readBody.
func bindJSON(c *gin.Context, dst interface{}, message string) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindError(err, message)
	}
	return nil
}

func bindError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.ErrPayloadTooLarge
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

func pageParams(c *gin.Context) (int, int) {
	page, size := 1, 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		size = v
	}
	return page, size
}

func respondWithMeta(c *gin.Context, status int, data interface{}, pagination *models.Pagination, warnings []string) {
	middleware.SetWarnings(c, warnings)
	response.JSON(c, status, data, pagination, middleware.ExtractMeta(c))
}
