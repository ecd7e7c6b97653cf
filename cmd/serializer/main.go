package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hanpama/serializer/internal/constants"
	"github.com/hanpama/serializer/internal/eventbus"
	"github.com/hanpama/serializer/internal/logging"
	"github.com/hanpama/serializer/internal/metrics"
	"github.com/hanpama/serializer/internal/otel"
)

type cli struct {
	Config  string         `help:"YAML file overriding the field constants (formats, empty strings)." placeholder:"FILE"`
	Log     logOptions     `embed:"" prefix:"log."`
	Otel    otelOptions    `embed:"" prefix:"otel."`
	Metrics metricsOptions `embed:"" prefix:"metrics."`

	Serialize   serializeCmd   `cmd:"" help:"Convert JSON objects to the native form of a schema type."`
	Deserialize deserializeCmd `cmd:"" help:"Validate a JSON object against a schema type and print the typed values."`
	Describe    describeCmd    `cmd:"" help:"Print the field metadata of schema types."`
	Render      renderCmd      `cmd:"" help:"Print schema types as SDL."`
}

type logOptions struct {
	Level  string `default:"info" enum:"debug,info,warn,error,none" help:"Log level (${enum})."`
	Format string `default:"logfmt" enum:"logfmt,json" help:"Log format (${enum})."`
}

type otelOptions struct {
	Endpoint string `help:"OTLP collector endpoint. Tracing is off when empty."`
	Service  string `default:"serializer" help:"OpenTelemetry service name."`
}

type metricsOptions struct {
	Textfile string `placeholder:"FILE" help:"Write Prometheus metrics to this file on exit."`
}

// globals is bound into every command's Run.
type globals struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	logger kitlog.Logger
	consts *constants.Table
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "serializer: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("serializer"),
		kong.Description("Declarative serialization of objects with schemas written in GraphQL SDL."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := logging.NewWithWriter(stderr, c.Log.Format, c.Log.Level)
	if err != nil {
		return err
	}
	logging.Logger = logger

	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)
	defer logging.Subscribe(bus, logger)()

	shutdown, err := otel.Setup(c.Otel.Endpoint, c.Otel.Service)
	if err != nil {
		return errors.Wrap(err, "otel setup")
	}
	defer func() { _ = shutdown(context.Background()) }()

	var reg *prometheus.Registry
	if c.Metrics.Textfile != "" {
		reg = prometheus.NewRegistry()
		defer metrics.New(reg).Register(bus)()
	}

	consts := constants.Default()
	if c.Config != "" {
		if consts, err = constants.Load(c.Config); err != nil {
			return err
		}
	}

	err = kctx.Run(&globals{
		ctx:    ctx,
		stdin:  stdin,
		stdout: stdout,
		logger: logger,
		consts: consts,
	})
	if reg != nil {
		if werr := metrics.WriteTextfile(c.Metrics.Textfile, reg); werr != nil {
			level.Error(logger).Log("msg", "failed to write metrics", "path", c.Metrics.Textfile, "err", werr)
		}
	}
	return err
}
