package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pokeguess/pokeguess/internal/catalog"
	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/game"
	"github.com/pokeguess/pokeguess/internal/logger"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // matches the server log entry
}

// NewErrorResponse creates a new API error response. Server errors never
// expose their cause to the client.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := http.StatusText(code)
	if err != nil && code < http.StatusInternalServerError {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

func generateCorrelationID() string {
	return uuid.NewString()[:8]
}

// statusForError maps request validation failures to 400 and everything
// else to 500.
func statusForError(err error) int {
	var missing *game.MissingFieldError
	switch {
	case errors.IsValidation(err),
		errors.As(err, &missing),
		errors.Is(err, catalog.ErrMissingID),
		errors.Is(err, catalog.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs err with a correlation id and writes the error response.
func (s *Server) HandleError(c echo.Context, err error, message string) error {
	code := statusForError(err)
	resp := NewErrorResponse(err, message, code)

	fields := []logger.Field{
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("message", message),
		logger.Error(err),
		logger.Int("code", code),
		logger.String("path", c.Request().URL.Path),
		logger.String("method", c.Request().Method),
		logger.String("ip", c.RealIP()),
	}

	log := s.log.WithContext(c.Request().Context())
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Warn("API request rejected", fields...)
	}

	return c.JSON(code, resp)
}

// httpErrorHandler renders errors returned by routing, middleware and the
// static file server in the same shape as handler errors.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	resp := NewErrorResponse(nil, message, code)
	if code >= http.StatusInternalServerError {
		s.log.WithContext(c.Request().Context()).Error("Unhandled error",
			logger.String("correlation_id", resp.CorrelationID),
			logger.String("path", c.Request().URL.Path),
			logger.Error(err))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, resp)
	}
	if writeErr != nil {
		s.log.Debug("Failed to write error response", logger.Error(writeErr))
	}
}
