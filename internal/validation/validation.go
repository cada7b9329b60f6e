// Package validation checks request payloads before they reach the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"agora/internal/models"

	"github.com/go-playground/validator/v10"
)

// MaxFilesPerPost caps the attachments of a single post.
const MaxFilesPerPost = 10

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"image/webp":         {},
	"image/svg+xml":      {},
	"application/pdf":    {},
	"text/plain":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-excel":                                                  {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint":                                             {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/zip": {},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("allowed_mime", func(fl validator.FieldLevel) bool {
		return IsAllowedMimeType(fl.Field().String())
	})
	return v
}

// IsAllowedMimeType reports whether files of the given type may be attached to a post.
func IsAllowedMimeType(mimeType string) bool {
	_, ok := allowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}

// Struct validates s against its `validate` tags and returns a VALIDATION_ERROR
// naming the first offending field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("invalid request body")
	}
	return models.NewValidationError(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s accepts at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "excludesall":
		return fmt.Sprintf("%s contains forbidden characters", field)
	case "allowed_mime":
		return fmt.Sprintf("%s %q is not an allowed file type", field, fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
