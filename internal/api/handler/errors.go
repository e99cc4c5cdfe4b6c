package handler

import (
	"errors"
	"log"
	"net/http"

	"partnerhub/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// classify turns any handler error into an *errorx.Error.
func classify(err error) *errorx.Error {
	var target *errorx.Error
	if errors.As(err, &target) {
		return target
	}
	if errors.Is(err, limiter.ErrRateLimited) {
		return errorx.Wrap(err, errorx.RateLimiting)
	}
	return errorx.Wrap(err, errorx.Service)
}

func renderError(err error) (int, errorResponse) {
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		message, ok := herr.Message.(string)
		if !ok {
			message = http.StatusText(herr.Code)
		}
		return herr.Code, errorResponse{Message: message}
	}

	target := classify(err)
	status := target.Status()

	var verr *services.ValidationError
	switch {
	case target.Of(errorx.Validation) && errors.As(target, &verr):
		return status, errorResponse{Message: verr.Message(), Errors: verr.Errors}
	case target.Of(errorx.RateLimiting):
		return status, errorResponse{Message: "Too Many Attempts."}
	case status >= http.StatusInternalServerError:
		log.Println("server error:", err)
		return status, errorResponse{Message: "Server Error"}
	default:
		return status, errorResponse{Message: target.Error()}
	}
}

// HTTPErrorHandler writes every error returned by a handler or middleware
// as {"message": ...}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := renderError(err)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.Println("write error response:", err)
	}
}
