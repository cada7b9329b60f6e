package server

import (
	"errors"
	"strings"
	"unicode"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// mapServiceError maps a service error to its HTTP status.
func mapServiceError(err error) int {
	return models.StatusFor(err)
}

// respondError writes err with its mapped status. Wrapped causes of server
// faults are hidden in production.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status >= fiber.StatusInternalServerError && s.config.IsProduction() {
		if appErr, ok := models.AsAppError(err); ok {
			err = &models.AppError{Code: appErr.Code, Message: appErr.Message}
		} else {
			err = models.NewInternalError(nil)
		}
	}
	return models.RespondWithError(c, status, err)
}

// parseBody decodes the JSON body into dst and validates it.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := validation.Struct(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, err)
		return errResponseWritten
	}
	return nil
}

// identityFrom returns the caller resolved by AuthRequired.
// On failure it writes a 401 JSON response and returns errResponseWritten.
func (s *Server) identityFrom(c *fiber.Ctx) (models.AuthenticatedIdentity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(middleware.MsgTokenAbsent))
		return models.AuthenticatedIdentity{}, errResponseWritten
	}
	return identity, nil
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "postId" -> "Invalid post ID", "commentId" -> "Invalid comment ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID", "parentCommentId" -> "parent comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}
