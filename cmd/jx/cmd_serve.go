package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/daemon"
	"github.com/jurybox/jurybox/internal/inference"
	"github.com/jurybox/jurybox/internal/logx"
)

func newServeCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inference daemon in the foreground",
		Long: `Run the inference daemon in the foreground.

The daemon binds its loopback address, starts loading the model in the
background, and answers readiness pings immediately. It keeps the model
resident until the process exits; use 'jx start' to run it detached.

Configuration comes from JURYBOX_* environment variables (a .env file in
the working directory is honored), with --addr taking precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, stdout, stderr)
		},
	}
	cmd.Flags().String("model", "", "Ollama model tag to load (overrides JURYBOX_MODEL)")
	return cmd
}

func runServe(cmd *cobra.Command, stdout, stderr io.Writer) error {
	// Optional; a missing .env is the normal case.
	_ = godotenv.Load()

	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model = model
	}

	log := logx.New(stderr, logx.ParseEnvironment(cfg.Environment))

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			return fmt.Errorf("initializing sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	engine := inference.NewOllama(cfg.OllamaURL, cfg.Model)
	session := daemon.NewSession(engine, cfg, log)
	srv := daemon.NewServer(session, cfg, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(stdout, "jx daemon listening on %s (model %s)\n", cfg.Addr, cfg.Model)
	return srv.ListenAndServe(ctx)
}
