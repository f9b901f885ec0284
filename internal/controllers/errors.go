package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ArtyomSF99/url-shortener/internal/models"
	"github.com/ArtyomSF99/url-shortener/internal/service"
)

func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "Invalid request",
		Code:    models.CodeValidationFailed,
		Details: err.Error(),
	})
}

// handleError writes the response for a service error. Unknown errors are
// logged and answered with a generic 500.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error: "You do not have permission to edit this URL.",
			Code:  models.CodeURLNotFound,
		})
	case errors.Is(err, service.ErrURLNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "URL not found",
			Code:  models.CodeURLNotFound,
		})
	case errors.Is(err, service.ErrSlugConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: "This custom slug is already taken or a unique slug could not be generated.",
			Code:  models.CodeSlugAlreadyExists,
		})
	case errors.Is(err, service.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "The provided URL is invalid or its domain cannot be reached.",
			Code:  models.CodeInvalidURL,
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "Invalid email or password",
			Code:  models.CodeInvalidCredentials,
		})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "User not found",
			Code:  models.CodeUserNotFound,
		})
	default:
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "An internal server error occurred",
			Code:  models.CodeInternal,
		})
	}
}
