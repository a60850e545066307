// Command worker runs the peraturan-ingest pipeline: discovery, PDF
// processing, or both, as one-shot or continuous invocations.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bantuaku/peraturan-ingest/config"
	"github.com/bantuaku/peraturan-ingest/logger"
	"github.com/bantuaku/peraturan-ingest/models"
	"github.com/bantuaku/peraturan-ingest/services/regulations"
	"github.com/bantuaku/peraturan-ingest/services/storage"
)

const sourceBaseURL = "https://peraturan.go.id"

type app struct {
	cfg        *config.Config
	log        *logger.Logger
	supervisor *regulations.Supervisor
	store      *regulations.Store
	registry   *prometheus.Registry
	closers    []func()
}

func buildApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	log := logger.New(logger.Config{Level: logger.LogLevel(cfg.LogLevel), Format: "json"})

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migration db handle: %w", err)
	}
	if err := storage.Migrate(sqlDB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	pg, err := storage.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	var cache *storage.Redis
	if cfg.RedisURL != "" {
		cache, err = storage.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, freshness cache disabled", "error", err)
			cache = nil
		}
	}

	var blobs *storage.S3
	if cfg.S3AccessKey != "" {
		blobs, err = storage.NewS3(ctx, storage.S3Config{
			Region: cfg.S3Region, Bucket: cfg.S3Bucket, Endpoint: cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey, SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Warn("s3 unavailable, pdf blob archiving disabled", "error", err)
			blobs = nil
		}
	}

	registry := prometheus.NewRegistry()
	metrics := regulations.NewMetrics(registry)

	store := regulations.NewStore(pg.Pool(), log)
	fetcher := regulations.NewFetcher(regulations.ClientProfile{
		UserAgent: cfg.UserAgent, AllowInsecureSSL: cfg.AllowInsecureSSL,
	}, log)
	resolver := regulations.NewResolver(fetcher, sourceBaseURL)
	discoverer := regulations.NewDiscoverer(fetcher, store, cache, sourceBaseURL, cfg.DiscoverIntervalHours, log)
	processor := regulations.NewProcessor(fetcher, resolver, store, blobs, sourceBaseURL, log, metrics)
	supervisor := regulations.NewSupervisor(discoverer, processor, store, cfg.BatchSize, time.Duration(cfg.SleepSeconds)*time.Second, log)

	return &app{
		cfg:        cfg,
		log:        log,
		supervisor: supervisor,
		store:      store,
		registry:   registry,
		closers:    []func(){pg.Close, func() { sqlDB.Close() }},
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		c()
	}
}

func rootContext() context.Context {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx
}

func main() {
	root := &cobra.Command{
		Use:   "worker",
		Short: "peraturan-ingest worker supervisor",
	}

	root.AddCommand(
		discoverCmd(),
		processCmd(),
		fullCmd(),
		continuousCmd(),
		reprocessCmd(),
		retryFailedCmd(),
		statsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "crawl peraturan.go.id's per-type index and enqueue new jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := rootContext()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.supervisor.Discover(ctx)
			if err != nil {
				return err
			}
			printRun(run)
			return nil
		},
	}
}

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "claim and process one batch of pending jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := rootContext()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.supervisor.ProcessBatch(ctx)
			if err != nil {
				return err
			}
			printRun(run)
			return nil
		},
	}
}

func fullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "full",
		Short: "run a discovery pass followed by one process batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := rootContext()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.supervisor.Full(ctx)
		},
	}
}

func continuousCmd() *cobra.Command {
	var discoverInterval int
	var discoveryFirst bool

	cmd := &cobra.Command{
		Use:   "continuous",
		Short: "loop process batches forever, interleaving periodic discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := rootContext()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			go serveAdmin(ctx, a)

			err = a.supervisor.Continuous(ctx, discoverInterval, discoveryFirst)
			if err == context.Canceled {
				a.log.Info("continuous mode stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVar(&discoverInterval, "discover-interval", 12, "run a discovery pass every N process iterations")
	cmd.Flags().BoolVar(&discoveryFirst, "discovery-first", false, "run one discovery pass before the first process batch")
	return cmd
}

func reprocessCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reprocess",
		Short: "requeue works below the current extraction version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := rootContext()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.supervisor.Reprocess(ctx, force)
			if err != nil {
				return err
			}
			printRun(run)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "reprocess even works already at the current extraction version")
	return cmd
}

func retryFailedCmd() *cobra.Command {
	var errorLike string

	cmd := &cobra.Command{
		Use:   "retry-failed",
		Short: "reset failed jobs back to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := rootContext()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.supervisor.RetryFailed(ctx, errorLike)
			if err != nil {
				return err
			}
			color.Green("requeued %d job(s)", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&errorLike, "error-like", "", "only retry jobs whose error message contains this substring")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "print job-status counts and the latest run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := rootContext()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.supervisor.Stats(ctx)
			if err != nil {
				return err
			}

			for status, count := range stats.JobCounts {
				fmt.Printf("%-10s %d\n", status, count)
			}
			if stats.LatestRun != nil {
				r := stats.LatestRun
				color.Cyan("last run: %s mode=%s status=%s processed=%d succeeded=%d failed=%d",
					r.ID, r.Mode, r.Status, r.JobsProcessed, r.JobsSucceeded, r.JobsFailed)
			}
			return nil
		},
	}
}

func printRun(run *models.ScraperRun) {
	if run.Status == models.RunStatusCompleted {
		color.Green("run %s completed: discovered=%d processed=%d succeeded=%d failed=%d",
			run.ID, run.JobsDiscovered, run.JobsProcessed, run.JobsSucceeded, run.JobsFailed)
		return
	}
	color.Red("run %s failed: %s", run.ID, run.ErrorMessage)
}
