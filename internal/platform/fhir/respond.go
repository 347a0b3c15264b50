package fhir

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// JSON writes v as a FHIR JSON response. echo only fills Content-Type when it
// is unset, so setting it first keeps application/fhir+json.
func JSON(c echo.Context, status int, v interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, MIMEFHIRJSON)
	return c.JSON(status, v)
}

// HTTPErrorHandler renders every error that reaches echo as an
// OperationOutcome so clients always receive a structured body.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		outcome := ErrorOutcome("internal server error")

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			}
			switch status {
			case http.StatusNotFound:
				outcome = NewOperationOutcome(IssueSeverityError, IssueTypeNotFound, msg)
			case http.StatusMethodNotAllowed:
				outcome = MethodNotAllowedOutcome(c.Request().Method)
			case http.StatusGatewayTimeout:
				outcome = NewOperationOutcome(IssueSeverityError, IssueTypeTimeout, msg)
			default:
				outcome = ErrorOutcome(msg)
			}
		} else {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		if werr := JSON(c, status, outcome); werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}
