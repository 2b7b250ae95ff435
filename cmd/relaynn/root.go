package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relaynn/internal/config"
	"github.com/kailas-cloud/relaynn/internal/domain"
	logpkg "github.com/kailas-cloud/relaynn/internal/logger"
	"github.com/kailas-cloud/relaynn/internal/metrics"
	"github.com/kailas-cloud/relaynn/internal/repository/directory"
	"github.com/kailas-cloud/relaynn/internal/transport/csv"
	rankuc "github.com/kailas-cloud/relaynn/internal/usecase/rank"
	"github.com/kailas-cloud/relaynn/internal/version"
)

type flags struct {
	configPath  string
	env         string
	logLevel    string
	directory   string
	format      string
	top         int
	colour      bool
	excludeSelf bool
	shortID     int
	workers     int
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "relaynn [flags] RELAY",
		Short: "Find the nearest neighbours of a relay",
		Long: `relaynn ranks every relay of a directory by how similar its configuration
is to a reference relay. Nickname, ports, operating system and advertised
bandwidth are folded into one string per relay and compared by Levenshtein
distance.

Output is one CSV line per relay:

  distance,fingerprint,nickname,ports,os,bandwidth

The smaller the distance, the more similar the relay is to the reference.`,
		Example:       "  relaynn -d details.json -t 20 -c 9695DFC35FFEB861329B9F1AB04C46397020CE31",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cmd, f, args[0], stdin, stdout)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "config file (default is ./config/$ENV.yaml)")
	fs.StringVar(&f.env, "env", config.GetEnv(), "environment: local, dev, prod")
	fs.StringVar(&f.logLevel, "log-level", "", "log level override: debug, info, warn, error")
	fs.StringVarP(&f.directory, "directory", "d", "", "relay directory file, - for stdin")
	fs.StringVar(&f.format, "format", "", "directory format: json, yaml (default: by extension)")
	fs.IntVarP(&f.top, "top", "t", 0, "number of most similar relays to display, 0 for all")
	fs.BoolVarP(&f.colour, "colour", "c", false, "highlight the characters that differ from the reference")
	fs.BoolVar(&f.excludeSelf, "exclude-self", false, "leave the reference relay out of the output")
	fs.IntVar(&f.shortID, "short-id", 0, "print only the first N characters of identifiers")
	fs.IntVar(&f.workers, "workers", 0, "relays scored in parallel, 0 for GOMAXPROCS")

	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the relaynn version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(stdout, version.String())
		},
	}
}

func run(ctx context.Context, cmd *cobra.Command, f flags, relayID string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	applyFlags(cmd, f, &cfg)

	// Validated before anything is loaded so an invalid limit never reaches ranking.
	if cfg.Rank.Top < 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidTop, cfg.Rank.Top)
	}

	logger, err := logpkg.NewLogger(f.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	ctx = logpkg.ContextWithLogger(ctx, logger.With(zap.String("reference", relayID)))

	logger.Debug("Starting relaynn",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", f.env),
		zap.String("directory", cfg.Directory.Path),
		zap.Int("top", cfg.Rank.Top),
	)

	reg := prometheus.NewRegistry()
	m := metrics.NewRanking(reg)

	relays, format, err := directory.New(stdin).Load(ctx, cfg.Directory.Path, cfg.Directory.Format)
	if err != nil {
		return err
	}
	m.ObserveLoad(format, len(relays))

	reference, err := rankuc.Lookup(relays, relayID)
	if err != nil {
		return err
	}

	results, err := rankuc.New(m).WithWorkers(cfg.Rank.Workers).Rank(ctx, reference, relays,
		rankuc.WithTop(cfg.Rank.Top),
		rankuc.WithAlignment(cfg.Output.Colour),
		rankuc.WithExcludeReference(f.excludeSelf),
	)
	if err != nil {
		return fmt.Errorf("rank relays: %w", err)
	}

	rows, err := csv.Write(stdout, csv.Lines(results, cfg.Output.Colour, csv.WithShortID(cfg.Output.ShortID)))
	if err != nil {
		return err
	}
	m.ObserveRows(rows, cfg.Output.Colour)

	if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
		logpkg.FromContext(ctx).Warn("Failed to export metrics", zap.Error(err))
	}
	return nil
}

func loadConfig(f flags) (config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load(f.env)
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("directory") {
		cfg.Directory.Path = f.directory
	}
	if fs.Changed("format") {
		cfg.Directory.Format = f.format
	}
	if fs.Changed("top") {
		cfg.Rank.Top = f.top
	}
	if fs.Changed("workers") {
		cfg.Rank.Workers = f.workers
	}
	if fs.Changed("colour") {
		cfg.Output.Colour = f.colour
	}
	if fs.Changed("short-id") {
		cfg.Output.ShortID = f.shortID
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
}

// userMessage turns domain errors into short user-facing messages.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRelayNotFound):
		return "reference relay not found in directory: " + err.Error()
	case errors.Is(err, domain.ErrInvalidTop):
		return "--top must be a non-negative integer: " + err.Error()
	default:
		return err.Error()
	}
}
