package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/amadorcf/YourBank-account-service/shared/apperrors"
	"github.com/amadorcf/YourBank-account-service/shared/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

type BadRequestErrorResponse struct {
	ErrorCode string            `json:"errorCode"`
	Message   string            `json:"message"`
	Details   []ValidationError `json:"details"`
}

func ValidateRequest(obj any) []ValidationError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []ValidationError{{Message: err.Error(), Type: "invalid"}}
	}

	validationErrors := make([]ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fe.Field(),
			Message: getErrorMsg(fe),
			Type:    fe.Tag(),
		})
	}
	return validationErrors
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "gt":
		return "Value must be greater than " + err.Param()
	case "gte":
		return "Value must be greater than or equal to " + err.Param()
	default:
		return "Invalid value"
	}
}

func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusBadRequest, BadRequestErrorResponse{
		ErrorCode: apperrors.CodeBadRequest,
		Message:   "Invalid request data",
		Details:   validationErrors,
	})
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{
		ErrorCode: strconv.Itoa(code),
		Message:   message,
	})
}

// RespondWithAppError writes the status and body for a failure returned by the
// lifecycle services. Errors without a kind are logged and reported as 500.
func RespondWithAppError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logger.Error("unhandled request failure", err, logger.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		RespondWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if appErr.Kind == apperrors.KindDependencyUnavailable {
		logger.Error("dependency unavailable", appErr.Err, logger.Fields{"path": c.Request.URL.Path})
	}
	c.JSON(apperrors.HTTPStatus(appErr), ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
	})
}
