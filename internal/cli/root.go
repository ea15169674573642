package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"contract-chat-mapping/internal/core/config"
	"contract-chat-mapping/internal/core/domain"
	"contract-chat-mapping/internal/infra/clm"
	"contract-chat-mapping/internal/infra/httpx"
	"contract-chat-mapping/internal/infra/openapi"
	"contract-chat-mapping/internal/logging"
	"contract-chat-mapping/internal/resolve"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "contractchat",
	Short: "Resolve chat group ids for a list of contract numbers",
	Long: `contractchat resolves, for each contract number in the input list, the
chat group id associated with that contract, via the open platform
search API and the internal cooperation API. Runs are resumable: rows
already final in the output file are skipped.`,
	Run: runResolve,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func runResolve(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("config file not found: %s\n", cfgPath)
		fmt.Println("create it and retry")
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	if isDebug {
		level = slog.LevelDebug
	}
	logger, closeLog, err := logging.Setup(level, cfg.Files.LogFile)
	if err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	logger = logger.With("run_id", uuid.NewString())

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	numbers, err := resolve.ReadContractNumbers(cfg.Files.InputTxt)
	if err != nil {
		return err
	}
	if len(numbers) == 0 {
		logger.Info("Input list is empty, nothing to do", "input", cfg.Files.InputTxt)
		return nil
	}

	store, err := resolve.LoadStore(cfg.Files.OutputFile)
	if err != nil {
		return err
	}
	final, err := cfg.Retry.FinalStatuses()
	if err != nil {
		return err
	}
	todo, skipped := store.Partition(numbers, final)
	logger.Info("Starting run",
		"input", len(numbers),
		"todo", len(todo),
		"skipped", len(skipped),
		"prior_rows", store.Len(),
		"concurrency", cfg.RateLimit.Concurrency)

	limiter := httpx.NewRateLimiter(cfg.RateLimit.QPMMap())
	retryer := httpx.NewRetryer(httpx.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay(),
		MaxDelay:   cfg.Retry.MaxDelay(),
		Jitter:     cfg.Retry.Jitter,
	})
	client := httpx.NewClient(cfg.Retry.Timeout(), limiter, retryer, logger)

	tokens := openapi.NewTokenSource(cfg.Auth.AppID, cfg.Auth.AppSecret, cfg.Endpoints.OpenAPIBase, client)
	search := openapi.NewContractClient(client, tokens, cfg.Endpoints.OpenAPIBase, logger)
	internal := clm.NewClient(client, cfg.Endpoints.CLMBase, cfg.Auth.Cookies.Session, logger)

	pipeline := resolve.NewPipeline(search, internal, internal, logger)
	runner := resolve.NewRunner(pipeline, resolve.RunnerConfig{
		Concurrency:        cfg.RateLimit.Concurrency,
		AbortOnAuthFailure: cfg.Auth.AbortOnAuthFailure,
	}, logger)

	rows := runner.Run(ctx, todo, func(p resolve.Progress) {
		logger.Info("Progress",
			"done", p.Done,
			"total", p.Total,
			"succeeded", p.Succeeded,
			"failed", p.Failed,
			"eta", p.ETA.Round(time.Second))
	})

	store.Merge(rows)
	if err := store.Persist(cfg.Files.OutputFile); err != nil {
		return err
	}

	succeeded, failed := 0, 0
	for _, row := range rows {
		if row.Status == domain.StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	logger.Info("Run complete",
		"processed", len(rows),
		"skipped", len(skipped),
		"succeeded", succeeded,
		"failed", failed,
		"output", cfg.Files.OutputFile)
	return nil
}
