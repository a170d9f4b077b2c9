package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/game"
)

// handleRandomRound serves GET /pokemon/random.
func (s *Server) handleRandomRound(c echo.Context) error {
	round, err := s.game.GenerateRound(c.Request().Context())
	if err != nil {
		return s.HandleError(c, err, "Failed to generate a round")
	}
	return c.JSON(http.StatusOK, round)
}

// handleGuess serves POST /pokemon/guess.
func (s *Server) handleGuess(c echo.Context) error {
	var req game.GuessRequest
	if err := c.Bind(&req); err != nil {
		malformed := errors.Newf("malformed guess request body").
			Component("api").
			Category(errors.CategoryValidation).
			Context("cause", err.Error()).
			Build()
		return s.HandleError(c, malformed, "Request body must be JSON with id and guessedName")
	}

	result, err := s.game.CheckGuess(c.Request().Context(), req)
	if err != nil {
		return s.HandleError(c, err, "Failed to check guess")
	}
	return c.JSON(http.StatusOK, result)
}
