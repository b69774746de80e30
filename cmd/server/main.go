package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/batch"
	"github.com/baditaflorin/go_comment_classifier/internal/adapters/httpapi"
	"github.com/baditaflorin/go_comment_classifier/internal/adapters/logger"
	"github.com/baditaflorin/go_comment_classifier/internal/adapters/normalizer"
	"github.com/baditaflorin/go_comment_classifier/internal/adapters/source"
	"github.com/baditaflorin/go_comment_classifier/internal/config"
	"github.com/baditaflorin/go_comment_classifier/pkg/classifier"
	"github.com/urfave/cli/v3"
)

const envPrefix = "COMMENTD_"

var version = "v0.1.0-dev"

// Flag names
const (
	flagConfig       = "config"
	flagAddr         = "addr"
	flagModels       = "models"
	flagThresholds   = "thresholds"
	flagReadTimeout  = "read-timeout"
	flagWriteTimeout = "write-timeout"
	flagLogFile      = "log-file"
	flagLogJSON      = "log-json"
	flagWarmUp       = "warm-up"
	flagInput        = "input"
	flagWorkers      = "workers"
)

func envVar(flag string) cli.ValueSourceChain {
	return cli.EnvVars(envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_")))
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "commentd",
		Usage:   "Multi-label comment classification service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagConfig, Usage: "YAML configuration file", Sources: envVar(flagConfig)},
			&cli.StringFlag{Name: flagAddr, Usage: "HTTP listen address", Value: config.DefaultAddr, Sources: envVar(flagAddr)},
			&cli.StringFlag{Name: flagModels, Usage: "Models artifact (path, file://, s3:// or gs:// URI)", Value: config.DefaultModelsPath, Sources: envVar(flagModels)},
			&cli.StringFlag{Name: flagThresholds, Usage: "Thresholds artifact (path, file://, s3:// or gs:// URI)", Value: config.DefaultThresholdsPath, Sources: envVar(flagThresholds)},
			&cli.DurationFlag{Name: flagReadTimeout, Usage: "HTTP read timeout", Value: config.DefaultReadTimeout, Sources: envVar(flagReadTimeout)},
			&cli.DurationFlag{Name: flagWriteTimeout, Usage: "HTTP write timeout", Value: config.DefaultWriteTimeout, Sources: envVar(flagWriteTimeout)},
			&cli.StringFlag{Name: flagLogFile, Usage: "Log file path (empty = stdout)", Sources: envVar(flagLogFile)},
			&cli.BoolFlag{Name: flagLogJSON, Usage: "Write logs as JSON", Sources: envVar(flagLogJSON)},
			&cli.BoolFlag{Name: flagWarmUp, Usage: "Perform system warm-up on startup", Value: true, Sources: envVar(flagWarmUp)},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP classification server",
				Action: serveAction,
			},
			{
				Name:      "classify",
				Usage:     "Classify newline-delimited comments and print JSON lines",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagInput, Usage: "Input file (default stdin)", Sources: envVar(flagInput)},
					&cli.IntFlag{Name: flagWorkers, Usage: "Concurrent workers (0 = number of CPUs)", Value: 0, Sources: envVar(flagWorkers)},
				},
				Action: classifyAction,
			},
			{
				Name:      "normalize",
				Usage:     "Print the normalized form of each argument, or of each stdin line",
				ArgsUsage: "[TEXT...]",
				Action:    normalizeAction,
			},
		},
	}
}

// loadConfig reads the configuration file and applies flags and environment variables over it.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String(flagConfig))
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet(flagAddr) {
		cfg.Server.Addr = cmd.String(flagAddr)
	}
	if cmd.IsSet(flagModels) {
		cfg.Models.Path = cmd.String(flagModels)
	}
	if cmd.IsSet(flagThresholds) {
		cfg.Models.Thresholds = cmd.String(flagThresholds)
	}
	if cmd.IsSet(flagReadTimeout) {
		cfg.Server.ReadTimeout = cmd.Duration(flagReadTimeout)
	}
	if cmd.IsSet(flagWriteTimeout) {
		cfg.Server.WriteTimeout = cmd.Duration(flagWriteTimeout)
	}
	if cmd.IsSet(flagLogFile) {
		cfg.Log.File = cmd.String(flagLogFile)
	}
	if cmd.IsSet(flagLogJSON) {
		cfg.Log.JSON = cmd.Bool(flagLogJSON)
	}
	if cmd.IsSet(flagWarmUp) {
		cfg.WarmUp = cmd.Bool(flagWarmUp)
	}

	return cfg, cfg.Validate()
}

// newClassifier loads the models described by cfg.
func newClassifier(ctx context.Context, cfg config.Config, log *logger.StdLogger, warmUp bool) (*classifier.Classifier, error) {
	router := source.NewRouter(source.WithS3Config(source.S3Config{
		Region:   cfg.Models.S3Region,
		Endpoint: cfg.Models.S3Endpoint,
	}))
	defer router.Close()

	return classifier.NewContext(ctx,
		classifier.WithLogger(log.Logger()),
		classifier.WithArtifacts(cfg.Models.Path, cfg.Models.Thresholds),
		classifier.WithArtifactSource(router),
		classifier.WithWarmUp(warmUp),
	)
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewServiceLogger(logger.Options{File: cfg.Log.File, JSON: cfg.Log.JSON})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Close()

	log.Info("Starting comment classification server",
		"address", cfg.Server.Addr,
		"read_timeout", cfg.Server.ReadTimeout,
		"write_timeout", cfg.Server.WriteTimeout,
		"max_request_size", cfg.Server.MaxRequestSize,
		"models", cfg.Models.Path,
		"thresholds", cfg.Models.Thresholds,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	clf, err := newClassifier(ctx, cfg, log, cfg.WarmUp)
	if err != nil {
		log.Error("Failed to initialize classifier", "error", err)
		return err
	}

	log.Info("Classifier initialized",
		"models_loaded", clf.Ready(),
		"labels", clf.Labels(),
		"warm_up", cfg.WarmUp,
		"cpus", runtime.NumCPU(),
	)

	handler := httpapi.NewHandler(clf, log)
	server := httpapi.NewServer(handler, cfg.Server)
	if err := httpapi.ListenAndServe(ctx, server, cfg.Server.Addr, log); err != nil {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

func classifyAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet(flagWorkers) {
		cfg.Batch.Workers = int(cmd.Int(flagWorkers))
	}

	log, err := logger.NewServiceLogger(logger.Options{File: cfg.Log.File, JSON: cfg.Log.JSON, Writer: os.Stderr})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Close()

	var input io.Reader = os.Stdin
	if path := cmd.String(flagInput); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		input = f
	}

	clf, err := newClassifier(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	if !clf.Ready() {
		return classifier.ErrModelsUnavailable
	}

	proc := batch.NewProcessor(clf, log,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithBatchSize(cfg.Batch.BatchSize),
	)
	_, err = proc.Process(ctx, input, os.Stdout)
	return err
}

func normalizeAction(_ context.Context, cmd *cli.Command) error {
	norm := normalizer.NewNormalizerFactory().CreateNormalizer(normalizer.DefaultNormalizerType)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if cmd.Args().Len() > 0 {
		for _, arg := range cmd.Args().Slice() {
			fmt.Fprintln(out, norm.Normalize(arg))
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), batch.MaxLineSize)
	for scanner.Scan() {
		fmt.Fprintln(out, norm.Normalize(scanner.Text()))
	}
	return scanner.Err()
}
