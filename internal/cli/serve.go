package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietloop/undercurrent/internal/algorithm"
	"github.com/quietloop/undercurrent/internal/config"
	"github.com/quietloop/undercurrent/internal/logging"
	"github.com/quietloop/undercurrent/internal/metrics"
	"github.com/quietloop/undercurrent/internal/server"
	"github.com/quietloop/undercurrent/internal/signals"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

// retentionSweepEvery is how often old signals are purged for privacy.
const retentionSweepEvery = 24 * time.Hour

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.NewWithService("undercurrent")
	cfg := config.Load(log.Logger)

	store := signals.NewStore(cfg.Store.Capacity)

	var opts []algorithm.Option
	if cfg.Engine.Seed != 0 {
		opts = append(opts, algorithm.WithSeed(cfg.Engine.Seed))
		log.WithField("seed", cfg.Engine.Seed).Warn("running with pinned random seed")
	}
	algo := algorithm.New(store, log, opts...)

	// The engine never starts its own timers: rotation and retention are
	// scheduled here, where the process lifecycle lives.
	stopCh := make(chan struct{})
	go func() {
		rotate := time.NewTicker(cfg.Engine.RotateEvery)
		sweep := time.NewTicker(retentionSweepEvery)
		defer rotate.Stop()
		defer sweep.Stop()
		for {
			select {
			case <-rotate.C:
				algo.RotateWeights()
			case <-sweep.C:
				if n := store.EvictOlderThan(cfg.Store.RetentionDays); n > 0 {
					metrics.SignalsEvicted.Add(float64(n))
					log.WithField("evicted", n).Info("retention sweep")
				}
			case <-stopCh:
				return
			}
		}
	}()
	defer close(stopCh)

	srv := server.New(store, algo, log, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithFields(logging.Fields{
			"addr":       addr,
			"signal_cap": cfg.Store.Capacity,
		}).Info("undercurrent serving")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	}()

	<-done
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
