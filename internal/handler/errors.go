package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// RegisterValidatorTagNames makes validation errors report JSON field names
func RegisterValidatorTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// ErrorHandler renders the last error attached to the context. Handlers call
// c.Error and return; nothing else writes error bodies.
func ErrorHandler(logger *zap.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := toAppError(c.Errors.Last().Err)
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("url", c.Request.URL.String()),
				zap.Int("status", appErr.Status),
				zap.Error(c.Errors.Last().Err),
			)
			if production {
				appErr = appErr.WithMessage(internalErrorMessage)
			}
		}

		c.AbortWithStatusJSON(appErr.Status, dto.ErrorResponse{
			Success: false,
			Error: dto.ErrorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
		})
	}
}

func toAppError(err error) *domain.AppError {
	if appErr, ok := domain.AsAppError(err); ok {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			details[fe.Field()] = describeFieldError(fe)
		}
		return domain.NewValidationError("Validation failed", details)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return domain.NewBadRequestError("Malformed request body")
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return domain.NewBadRequestError("Malformed query parameter")
	}

	return &domain.AppError{
		Code:    domain.CodeInternal,
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a UUID"
	case "url":
		return "must be a URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// NotFound handles unknown routes
func NotFound(c *gin.Context) {
	_ = c.Error(domain.NewNotFoundError("Route not found"))
}
