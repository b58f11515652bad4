package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/kbukum/consensus/config"
	"github.com/kbukum/consensus/errors"
	"github.com/kbukum/consensus/intersect"
	"github.com/kbukum/consensus/logger"
	"github.com/kbukum/consensus/observability"
	"github.com/kbukum/consensus/provider"
	"github.com/kbukum/consensus/resilience"
	"github.com/kbukum/consensus/validation"
	"github.com/kbukum/consensus/version"
)

// errVersion stops load after --version.
var errVersion = stderrors.New("version requested")

type app struct {
	stdout io.Writer
	stderr io.Writer
	// openRoot maps the configured root directory to the filesystem
	// sources are read from.
	openRoot func(root string) fs.FS
	// configFS is handed to the config loader.
	configFS config.FileSystem
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		openRoot: os.DirFS,
		configFS: config.OSFileSystem{},
	}
}

// run executes one invocation and returns the process exit status.
func (a *app) run(ctx context.Context, args []string) int {
	opts, err := a.load(args)
	if stderrors.Is(err, errVersion) {
		fmt.Fprintln(a.stdout, serviceName, version.Get())
		return 0
	}
	if err != nil {
		a.fail(logger.NewWithWriter(&logger.Config{Level: "info"}, serviceName, a.stderr), err)
		return 1
	}

	log := logger.NewWithWriter(&opts.Logging, opts.Name, a.logWriter(opts.Logging.Output))
	logger.SetGlobalLogger(log)

	ctx = logger.ContextWithRequestID(ctx, uuid.NewString())
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	metrics, shutdown, err := a.telemetry(ctx, opts)
	if err != nil {
		a.fail(log, err)
		return 1
	}
	defer shutdown()

	items, err := a.intersect(ctx, opts, log, metrics)
	if err != nil {
		a.fail(log.WithContext(ctx), err)
		return 1
	}

	enc := json.NewEncoder(a.stdout)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(items); err != nil {
		a.fail(log, errors.Internal(err))
		return 1
	}
	return 0
}

func (a *app) intersect(ctx context.Context, opts *Options, log *logger.Logger, metrics *observability.Metrics) ([]any, error) {
	middleware := []provider.Middleware[fs.FS, []any]{
		provider.WithLogging[fs.FS, []any](log.WithComponent("source")),
		provider.WithTracing[fs.FS, []any](opts.Name),
	}
	if metrics != nil {
		middleware = append(middleware, provider.WithMetrics[fs.FS, []any](metrics))
	}
	chain := provider.Chain(middleware...)

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = opts.RetryAttempts

	sources := make([]intersect.Source[fs.FS, any], len(opts.Sources))
	for i, path := range opts.Sources {
		p := provider.WithResilience(fileSource(path), provider.ResilienceConfig{Retry: &retry})
		sources[i] = intersect.FromProvider(chain(p))
	}

	combinator := intersect.New(sources,
		intersect.WithName(opts.Name),
		intersect.WithLogger(log),
		intersect.WithMetrics(metrics),
		intersect.WithMaxConcurrency(opts.MaxConcurrency),
	)
	traced := provider.WithTracing[fs.FS, []any](opts.Name)(combinator)
	return traced.Execute(ctx, a.openRoot(opts.Root))
}

// load resolves options from defaults, the config file, the environment and
// flags, in increasing precedence.
func (a *app) load(args []string) (*Options, error) {
	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	flags.SetOutput(a.stderr)
	configFile := flags.StringP("config", "c", "", "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "path to a dotenv file")
	root := flags.StringP("root", "r", ".", "directory source paths are relative to")
	maxConcurrency := flags.IntP("max-concurrency", "j", 0, "maximum sources read at once (0 = all)")
	retries := flags.Int("retries", 1, "attempts per source read")
	timeout := flags.Duration("timeout", 0, "overall timeout (0 = none)")
	pretty := flags.Bool("pretty", false, "indent JSON output")
	logLevel := flags.String("log-level", "", "log level (debug, info, warn, error)")
	showVersion := flags.BoolP("version", "v", false, "print the version and exit")
	if err := flags.Parse(args); err != nil {
		return nil, errors.InvalidInput("args", err.Error())
	}
	if *showVersion {
		return nil, errVersion
	}

	var opts Options
	err := config.Load(serviceName, &opts,
		config.WithFileSystem(a.configFS),
		config.WithConfigFile(*configFile),
		config.WithEnvFile(*envFile),
		config.WithDefaults(defaults()),
	)
	if err != nil {
		return nil, errors.InvalidInput("config", err.Error()).WithCause(err)
	}

	if flags.Changed("root") {
		opts.Root = *root
	}
	if flags.Changed("max-concurrency") {
		opts.MaxConcurrency = *maxConcurrency
	}
	if flags.Changed("retries") {
		opts.RetryAttempts = *retries
	}
	if flags.Changed("timeout") {
		opts.Timeout = *timeout
	}
	if flags.Changed("pretty") {
		opts.Pretty = *pretty
	}
	if flags.Changed("log-level") {
		opts.Logging.Level = *logLevel
	}
	if flags.NArg() > 0 {
		opts.Sources = flags.Args()
	}

	opts.ApplyDefaults()
	if err := opts.ServiceConfig.Validate(); err != nil {
		return nil, errors.InvalidInput("config", err.Error()).WithCause(err)
	}
	if err := validation.Validate(&opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// telemetry installs OTLP exporters when an endpoint is configured. The
// returned shutdown func is always safe to call.
func (a *app) telemetry(ctx context.Context, opts *Options) (*observability.Metrics, func(), error) {
	noop := func() {}
	if opts.Telemetry.Endpoint == "" {
		return nil, noop, nil
	}

	tcfg := observability.DefaultTracerConfig(opts.Name)
	tcfg.Endpoint = opts.Telemetry.Endpoint
	tcfg.Insecure = opts.Telemetry.Insecure
	tcfg.SampleRate = opts.Telemetry.SampleRate
	tcfg.Environment = opts.Environment
	tcfg.ServiceVersion = opts.Version
	if tcfg.ServiceVersion == "" {
		tcfg.ServiceVersion = version.Get().Version
	}
	tp, err := observability.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, noop, errors.Internal(err)
	}

	mcfg := observability.DefaultMeterConfig(opts.Name)
	mcfg.Endpoint = tcfg.Endpoint
	mcfg.Insecure = tcfg.Insecure
	mcfg.Environment = tcfg.Environment
	mcfg.ServiceVersion = tcfg.ServiceVersion
	mp, err := observability.InitMeter(ctx, mcfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, noop, errors.Internal(err)
	}

	metrics, err := observability.NewMetrics(observability.Meter(opts.Name))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, noop, errors.Internal(err)
	}

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(sctx); err != nil {
			logger.Warn("meter shutdown failed", logger.ErrorFields("shutdown", err))
		}
		if err := tp.Shutdown(sctx); err != nil {
			logger.Warn("tracer shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}
	return metrics, shutdown, nil
}

// fail logs err and writes its envelope to stderr.
func (a *app) fail(log *logger.Logger, err error) {
	appErr := errors.ToAppError(err)
	log.WithError(err).Error("intersect failed", logger.Fields("code", string(appErr.Code)))

	body, mErr := json.Marshal(appErr.ToResponse())
	if mErr != nil {
		fmt.Fprintln(a.stderr, appErr.Error())
		return
	}
	fmt.Fprintln(a.stderr, string(body))
}

func (a *app) logWriter(output string) io.Writer {
	if output == logger.OutputStdout {
		return a.stdout
	}
	return a.stderr
}
