package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vjinviraj/pwalib-backend/ai"
	"github.com/vjinviraj/pwalib-backend/ai/summary"
	"github.com/vjinviraj/pwalib-backend/internal/profile"
	"github.com/vjinviraj/pwalib-backend/internal/version"
	"github.com/vjinviraj/pwalib-backend/server"
	"github.com/vjinviraj/pwalib-backend/store"
	"github.com/vjinviraj/pwalib-backend/store/s3"
)

var rootCmd = &cobra.Command{
	Use:   "pwalib",
	Short: `Backend gateway for the library PWA: file uploads to object storage and AI book summaries.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Only load .env for direct binary execution (not when running as systemd service)
		if !isRunningAsSystemdService() {
			// Try to load .env file from current directory (ignore error if file doesn't exist)
			_ = godotenv.Load()
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		setupLogger(instanceProfile)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var driver store.Driver
		if instanceProfile.IsStorageEnabled() {
			s3Driver, err := s3.NewDriver(ctx, instanceProfile)
			if err != nil {
				slog.Error("failed to create storage driver", "error", err)
				return
			}
			driver = s3Driver
		} else {
			slog.Warn("object storage disabled: PWALIB_STORAGE_BUCKET is not set")
		}
		storeInstance := store.New(driver, instanceProfile)

		var summarizer summary.Summarizer
		if instanceProfile.IsAIEnabled() {
			llmService, err := ai.NewService(&ai.Config{
				Provider: instanceProfile.LLMProvider,
				APIKey:   instanceProfile.LLMAPIKey,
				BaseURL:  instanceProfile.LLMBaseURL,
				Timeout:  instanceProfile.LLMTimeout,
			})
			if err != nil {
				slog.Warn("failed to initialize LLM service",
					"provider", instanceProfile.LLMProvider,
					"error", err,
					"note", "summary generation will be disabled",
				)
			} else {
				slog.Info("LLM service initialized",
					"provider", instanceProfile.LLMProvider,
					"model", instanceProfile.LLMModel,
					"fallback_model", instanceProfile.LLMFallbackModel,
				)
				summarizer = summary.NewSummarizer(llmService,
					instanceProfile.LLMModel,
					instanceProfile.LLMFallbackModel,
				)
				// Warmup LLM connection asynchronously to reduce first-request latency.
				// Best-effort: warmup failures don't affect service startup.
				go llmService.Warmup(ctx, instanceProfile.LLMModel)
			}
		} else {
			slog.Info("AI features disabled", "provider", instanceProfile.LLMProvider)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, summarizer)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM.
		// The default signal sent by the `kill` command is SIGTERM,
		// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
		signal.Notify(c, terminationSignals...)

		if err := s.Start(ctx); err != nil {
			slog.Error("failed to start server", "error", err)
			return
		}

		printGreetings(instanceProfile)

		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		// Wait for CTRL-C.
		<-ctx.Done()
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 8080)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8080, "port of server")

	for _, flag := range []string{"mode", "addr", "port"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("pwalib")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setupLogger installs the process-wide slog handler: JSON in prod, text for
// local development.
func setupLogger(profile *profile.Profile) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if profile.IsDev() {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("pwalib-backend %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
	}

	fmt.Printf("Mode: %s\n", profile.Mode)
	if profile.IsStorageEnabled() {
		fmt.Printf("Storage bucket: %s\n", profile.StorageBucket)
	}
	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
	}
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	// Check if invoked by systemd (environment variables set by systemd)
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
