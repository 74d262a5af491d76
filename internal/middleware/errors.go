package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/lab-seat-reservation/internal/logger"
)

// ErrorHandler renders errors that escape handlers (unknown routes, bind
// failures, panics turned into errors) in the same {"error","message"}
// shape the handlers use.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else {
			log.Error("unhandled error", "method", c.Request().Method, "path", c.Path(), "error", err)
		}

		var body echo.Map
		if code >= http.StatusInternalServerError {
			body = echo.Map{"error": "InternalError", "message": msg}
		} else {
			body = echo.Map{"error": http.StatusText(code), "message": msg}
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// RequestLogger writes one access log record per request through log.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", float64(v.Latency) / float64(time.Millisecond),
				"remote_ip", v.RemoteIP,
			}
			if v.RequestID != "" {
				args = append(args, "request_id", v.RequestID)
			}
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
			}
			if v.Status >= http.StatusInternalServerError {
				log.Error("request", args...)
			} else {
				log.Info("request", args...)
			}
			return nil
		},
	})
}
