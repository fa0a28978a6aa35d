package errcodes

import (
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

type envelope struct {
	Error envelopeError `json:"error"`
}

type envelopeError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is the echo.HTTPErrorHandler. Errors from this package render with
// their status and code, echo errors keep their status, and anything else
// becomes a logged 500.
func (h *Handler) Handle(err error, c echo.Context) {
	log := logger.FromEchoContext(c)

	if errutils.IsIgnorableErr(err) {
		log.Err(err).Warn("broken pipe")
		return
	}
	if c.Response().Committed {
		log.Err(err).Warn("error after response was written")
		return
	}

	status, body := render(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Error("server error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func render(err error) (int, interface{}) {
	var e *Error
	if errors.As(err, &e) {
		if e.Body != nil {
			return e.HTTPCode, e.Body
		}
		return e.HTTPCode, newEnvelope(e.HTTPCode, e.Code, e.Message)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, newEnvelope(he.Code, strcase.ToSnake(msg), msg)
	}

	return http.StatusInternalServerError,
		newEnvelope(http.StatusInternalServerError, "internal_server_error", "Internal Server Error")
}

func newEnvelope(status int, code, msg string) envelope {
	return envelope{Error: envelopeError{Code: code, Message: msg, StatusCode: status}}
}
