// Package cli exposes the hammersynth commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/config"
	"github.com/kailas-cloud/hammersynth/internal/db"
	dbRedis "github.com/kailas-cloud/hammersynth/internal/db/redis"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	logpkg "github.com/kailas-cloud/hammersynth/internal/logger"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
	"github.com/kailas-cloud/hammersynth/internal/repository/genomecache"
	"github.com/kailas-cloud/hammersynth/internal/transport/bvbrc"
	chiTransport "github.com/kailas-cloud/hammersynth/internal/transport/chi"
	healthuc "github.com/kailas-cloud/hammersynth/internal/usecase/health"
	"github.com/kailas-cloud/hammersynth/internal/usecase/synth"
	"github.com/kailas-cloud/hammersynth/internal/version"
)

// registry holds every collector of the process.
var registry = newRegistry()

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(reg)
	return reg
}

// app carries the persistent flags and the dependencies built from them.
type app struct {
	configPath  string
	verbose     bool
	seed        uint64
	metricsAddr string

	cfg         config.Config
	logger      *zap.Logger
	store       db.Store
	fetcher     genome.Fetcher
	stopMetrics func()
}

// NewRootCommand builds the hammersynth command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{logger: zap.NewNop()})
}

// Execute runs the command tree with ctx. Resources acquired during setup are
// released whether or not the command succeeds.
func Execute(ctx context.Context) error {
	a := &app{logger: zap.NewNop()}
	return a.execute(ctx, newRootCommand(a))
}

func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	defer a.teardown()
	return root.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "hammersynth",
		Short: "Build synthetic metagenomic samples for hammer classifier training",
		Long: `hammersynth assembles labeled synthetic samples from real genomes.

Each contig written to the output FASTA is labeled with its source genome and
the closest representative genome by seed-protein k-mer similarity. Genomes
come from binning output directories, a genome evaluation report, a cached
genome directory, or a representative-neighbor table.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "configuration file (default: config/<ENV>.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	pf.Uint64Var(&a.seed, "seed", 0, "random seed for reproducible samples (0 = random)")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address while running")

	root.AddCommand(
		synthCommand(a),
		binsynthCommand(a),
		rewriteCommand(a),
		neighborsCommand(a),
		bincheckCommand(a),
		versionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	env := config.GetEnv()
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(env)
	}
	if err != nil {
		return err
	}

	a.logger, err = logpkg.NewLogger(env, logpkg.Level(a.verbose, a.cfg.Logging.Level))
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("seed") {
		a.seed = a.cfg.Sample.Seed
	}

	client := bvbrc.NewClient(&bvbrc.Config{
		BaseURL:  a.cfg.Repository.BaseURL,
		Timeout:  time.Duration(a.cfg.Repository.TimeoutSec) * time.Second,
		PageSize: a.cfg.Repository.PageSize,
		Logger:   a.logger,
	})
	a.fetcher = client

	var cachePinger healthuc.CachePinger
	if a.cfg.Cache.Enabled() {
		if err := a.connectCache(cmd.Context()); err != nil {
			return err
		}
		a.fetcher = genomecache.New(client, a.store,
			time.Duration(a.cfg.Cache.TTLHours)*time.Hour, metrics.GenomeCacheTotal, a.logger)
		cachePinger = a.store
	}

	addr := a.metricsAddr
	if addr == "" {
		addr = a.cfg.Metrics.Addr
	}
	if addr != "" {
		a.startMetrics(cmd.Context(), addr, healthuc.New(cachePinger, client))
	}
	return nil
}

func (a *app) connectCache(ctx context.Context) error {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Cache.Addrs,
		Password: a.cfg.Cache.Password,
	})
	if err != nil {
		return fmt.Errorf("genome cache: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(a.cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return fmt.Errorf("genome cache not ready: %w", err)
	}
	a.logger.Info("Connected to genome cache",
		zap.String("driver", a.cfg.Cache.Driver),
		zap.Strings("addrs", a.cfg.Cache.Addrs),
	)
	a.store = store
	return nil
}

func (a *app) startMetrics(ctx context.Context, addr string, health *healthuc.Service) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	router := chiTransport.NewRouter(chiTransport.RouterConfig{
		Gatherer: registry,
		Health:   health,
		APIKeys:  a.cfg.Metrics.APIKeys,
		Logger:   a.logger,
	})
	go func() {
		defer close(done)
		if err := chiTransport.Serve(ctx, addr, router, a.logger); err != nil {
			a.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	a.stopMetrics = func() {
		cancel()
		<-done
	}
}

func (a *app) teardown() {
	if a.stopMetrics != nil {
		a.stopMetrics()
		a.stopMetrics = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	_ = a.logger.Sync()
}

// newRun starts a run context for one driver invocation.
func (a *app) newRun() *synth.Run {
	return synth.NewRun(a.logger, a.seed)
}

// logSummary reports the outcome of a driver.
func logSummary(run *synth.Run, sum synth.Summary) {
	run.Logger.Info("Sample complete",
		zap.Int("genomes", sum.Genomes),
		zap.Int("sequences", sum.Sequences),
	)
}
