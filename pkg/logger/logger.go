// Package logger wraps zerolog behind a small global facade plus the Gin
// middlewares the HTTP layer mounts.
package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const serviceName = "gitfolio"

var root zerolog.Logger

// Init configures the global logger. Accepted levels: debug, info, warn,
// error, fatal; anything else falls back to info. Debug level switches to
// the human-readable console writer for local work.
func Init(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if lvl == zerolog.DebugLevel {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	root = zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Caller().
		Logger()
}

func init() {
	Init("info")
}

func Debug() *zerolog.Event { return root.Debug() }
func Info() *zerolog.Event  { return root.Info() }
func Warn() *zerolog.Event  { return root.Warn() }
func Error() *zerolog.Event { return root.Error() }
func Fatal() *zerolog.Event { return root.Fatal() }

// Printf-style variants for startup/shutdown paths.

func Infof(format string, v ...interface{})  { root.Info().Msgf(format, v...) }
func Warnf(format string, v ...interface{})  { root.Warn().Msgf(format, v...) }
func Errorf(format string, v ...interface{}) { root.Error().Msgf(format, v...) }

// Fatalf logs at fatal level and exits.
func Fatalf(format string, v ...interface{}) { root.Fatal().Msgf(format, v...) }

// Get returns the underlying logger for callers that need their own
// contextual fields.
func Get() zerolog.Logger {
	return root
}

// GinLogger logs one line per request. The signed-in principal's id is
// included when the auth middleware stored one on the context.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = root.Error()
		case status >= http.StatusBadRequest:
			event = root.Warn()
		default:
			event = root.Info()
		}
		if userID := c.GetUint("user_id"); userID != 0 {
			event = event.Uint("user_id", userID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("elapsed", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("http request")
	}
}

// GinRecovery converts panics into a logged 500 response.
func GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		root.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Msg("panic recovered")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
