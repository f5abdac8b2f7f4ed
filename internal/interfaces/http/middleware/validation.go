package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/backoffice/financeiro/internal/interfaces/http/dto"
)

// SetupValidator makes binding errors name fields by their json tag, or
// their form tag for query parameters
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(fieldName)
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return ""
}

// FormatValidationErrors builds the 400 body for a binding error. Decoding
// failures carry no field and are reported as one detail.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		details = make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: getValidationMessage(fe)})
		}
	case err != nil:
		details = []dto.ValidationDetail{{Message: err.Error()}}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError aborts with a 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// validationMessages maps a validator tag to its message. Bounds on strings
// count characters.
var validationMessages = map[string]func(fe validator.FieldError) string{
	"required": fixed("This field is required"),
	"email":    fixed("Invalid email format"),
	"uuid":     fixed("Must be a UUID"),
	"numeric":  fixed("Must be numeric"),
	"datetime": func(fe validator.FieldError) string { return "Must be a date in " + fe.Param() + " format" },
	"oneof":    func(fe validator.FieldError) string { return "Must be one of: " + fe.Param() },
	"len":      func(fe validator.FieldError) string { return "Must be exactly " + fe.Param() + " characters" },
	"min":      bound("Must be at least "),
	"max":      bound("Must be at most "),
	"gte":      func(fe validator.FieldError) string { return "Must be greater than or equal to " + fe.Param() },
	"lte":      func(fe validator.FieldError) string { return "Must be less than or equal to " + fe.Param() },
	"gt":       func(fe validator.FieldError) string { return "Must be greater than " + fe.Param() },
	"lt":       func(fe validator.FieldError) string { return "Must be less than " + fe.Param() },
}

func fixed(msg string) func(validator.FieldError) string {
	return func(validator.FieldError) string { return msg }
}

func bound(prefix string) func(validator.FieldError) string {
	return func(fe validator.FieldError) string {
		if fe.Kind() == reflect.String {
			return prefix + fe.Param() + " characters"
		}
		return prefix + fe.Param()
	}
}

func getValidationMessage(fe validator.FieldError) string {
	if msg, ok := validationMessages[fe.Tag()]; ok {
		return msg(fe)
	}
	return "Invalid value"
}
