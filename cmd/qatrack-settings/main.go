package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"qatrack/internal/api"
	"qatrack/internal/config"
	"qatrack/internal/database"
	"qatrack/internal/metrics"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// app carries state shared by the subcommands of one invocation
type app struct {
	v        *viper.Viper
	settings *config.Settings
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "qatrack-settings",
		Short: "Load, validate and inspect QATrack+ deployment settings",
		Long: `qatrack-settings loads the deployment-local settings of a QATrack+
instance from built-in defaults, an optional YAML file, .env files and
QATRACK_* environment variables. Database passwords are read from
QATRACK_DB_PASSWORD or the file named by QATRACK_DB_PASSWORD_FILE.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to settings file (optional)")
	flags.StringSlice("env-file", []string{".env.local", ".env"}, "Env files to read before applying environment overrides")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("test-mode", false, "Skip network side effects for testing")

	cmd.AddCommand(
		a.newShowCmd(),
		a.newValidateCmd(),
		a.newCheckDBCmd(),
		a.newServeCmd(),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("qatrack")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	logger, err := newLogger(a.v.GetString("log-level"), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger

	settings, err := config.Load(cmd.Context(), config.LoadOptions{
		Path:     a.v.GetString("config"),
		EnvFiles: a.v.GetStringSlice("env-file"),
	})
	if err != nil {
		if cmd.Name() == "validate" && errors.Is(err, config.ErrInvalid) {
			return reportInvalid(cmd.OutOrStdout(), err)
		}
		return fmt.Errorf("failed to load settings: %w", err)
	}
	a.settings = settings

	if settings.Debug {
		if a.logger, err = newLogger("debug", cmd.ErrOrStderr()); err != nil {
			return err
		}
		a.logger.Warn("debug is enabled; do not use these settings in production")
	}
	a.logger.Debug("settings loaded",
		"config", a.v.GetString("config"),
		"databases", settings.Aliases(),
		"time_zone", settings.TimeZone,
	)
	return nil
}

func (a *app) newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the loaded settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if !a.v.GetBool("show-secrets") {
				s = s.Redacted()
			}

			out := cmd.OutOrStdout()
			switch format := a.v.GetString("format"); format {
			case "yaml":
				data, err := s.Marshal()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			default:
				return fmt.Errorf("invalid format: %s", format)
			}
		},
	}
	cmd.Flags().Bool("show-secrets", false, "Print passwords instead of masking them")
	cmd.Flags().String("format", "yaml", "Output format (yaml, json)")
	return cmd
}

func (a *app) newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the settings and report every problem",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.v.GetBool("production") {
				if err := a.settings.ValidateProduction(); err != nil {
					return reportInvalid(cmd.OutOrStdout(), err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "settings are valid")
			return nil
		},
	}
	cmd.Flags().Bool("production", false, "Also apply production checks (debug off, no wildcard hosts)")
	return cmd
}

func (a *app) newCheckDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-db",
		Short: "Connect to the default database and report server details",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.v.GetBool("test-mode") {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.v.GetDuration("timeout"))
			defer cancel()

			info, err := database.Check(ctx, a.settings)
			if err != nil {
				return fmt.Errorf("database check failed: %w", err)
			}

			a.logger.Info("database reachable",
				"vendor", info.Vendor,
				"version", info.Version,
				"server_time_zone", info.TimeZone,
			)
			if info.TimeZoneMismatch {
				a.logger.Warn("database session time zone differs from settings",
					"server_time_zone", info.TimeZone,
					"time_zone", a.settings.TimeZone,
				)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
	cmd.Flags().Duration("timeout", 10*time.Second, "Connection timeout")
	return cmd
}

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only settings inspection API",
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := api.NewRouter(a.settings, a.logger)
			if err != nil {
				return fmt.Errorf("failed to build router: %w", err)
			}
			metrics.RecordSettings(a.settings)

			if a.v.GetBool("test-mode") {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx, router)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	return cmd
}

func (a *app) serve(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:         a.v.GetString("addr"),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Started HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.v.GetDuration("shutdown-timeout"))
		defer cancel()
		a.logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
	return logger, nil
}

// reportInvalid prints one validation problem per line and returns an
// error so the process exits non-zero
func reportInvalid(w io.Writer, err error) error {
	fmt.Fprintln(w, "settings are invalid:")
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	return errors.New("validation failed")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
