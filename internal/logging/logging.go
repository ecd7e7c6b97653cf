// Package logging builds the go-kit logger used by the command line and
// subscribes it to conversion events.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/hanpama/serializer/internal/eventbus"
	"github.com/hanpama/serializer/internal/events"
	"github.com/hanpama/serializer/internal/reqid"
)

// Logger is a shared go-kit logger.
var Logger = kitlog.NewNopLogger()

// New returns a logger writing to stderr. format is "logfmt" or "json";
// lvl is one of debug, info, warn, error, none.
func New(format, lvl string) (kitlog.Logger, error) {
	return NewWithWriter(os.Stderr, format, lvl)
}

func NewWithWriter(w io.Writer, format, lvl string) (kitlog.Logger, error) {
	w = kitlog.NewSyncWriter(w)
	var logger kitlog.Logger
	switch strings.ToLower(format) {
	case "", "logfmt":
		logger = kitlog.NewLogfmtLogger(w)
	case "json":
		logger = kitlog.NewJSONLogger(w)
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
	filter, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}

	// use UTC timestamps and skip 5 stack frames.
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.Caller(5))

	// Must put the level filter last for efficiency.
	return level.NewFilter(logger, filter), nil
}

// Init builds a logger with New and installs it as Logger.
func Init(format, lvl string) (kitlog.Logger, error) {
	logger, err := New(format, lvl)
	if err != nil {
		return nil, err
	}
	Logger = logger
	return logger, nil
}

func levelOption(lvl string) (level.Option, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, errors.Errorf("unknown log level %q", lvl)
}

// Subscribe logs conversion events from b: advisories at warn, conversion
// boundaries at debug, failed conversions at error.
func Subscribe(b *eventbus.Bus, logger kitlog.Logger) (unsubscribe func()) {
	offs := []func(){
		eventbus.On(b, func(ctx context.Context, e events.CoercionAdvisory) {
			level.Warn(logger).Log("msg", e.Message, "schema", e.Schema, "field", e.Field, "type", e.Kind, "id", id(ctx))
		}),
		eventbus.On(b, func(ctx context.Context, e events.ConversionStart) {
			level.Debug(logger).Log("msg", "conversion started", "schema", e.Schema, "direction", e.Direction, "count", e.Count, "id", id(ctx))
		}),
		eventbus.On(b, func(ctx context.Context, e events.ConversionFinish) {
			if e.Err != nil {
				level.Error(logger).Log("msg", "conversion failed", "schema", e.Schema, "direction", e.Direction, "err", e.Err, "id", id(ctx))
				return
			}
			level.Debug(logger).Log("msg", "conversion finished", "schema", e.Schema, "direction", e.Direction, "count", e.Count, "duration", e.Duration, "id", id(ctx))
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func id(ctx context.Context) string {
	rid, _ := reqid.FromContext(ctx)
	return rid
}
