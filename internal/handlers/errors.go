package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/matrimony/backend/internal/ledger"
	"github.com/anonto42/matrimony/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// ledgerError maps ledger errors onto HTTP errors
func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidOperation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Service temporarily unavailable, please retry").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// actorID returns the authenticated caller or an unauthorized error
func actorID(c echo.Context) (string, error) {
	id := middleware.ActorID(c)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}
