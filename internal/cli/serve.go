package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/config"
	"github.com/rohmanhakim/search-engine-core/internal/crawler"
	"github.com/rohmanhakim/search-engine-core/internal/httpapi"
	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/rohmanhakim/search-engine-core/internal/queue"
	"github.com/rohmanhakim/search-engine-core/internal/storage"
	"github.com/rohmanhakim/search-engine-core/internal/templates"
)

// loadTemplates seeds the seven prebuilt crawl templates and, if
// svcCfg.TemplatesPath is set, overlays templates loaded from that file or
// directory on top of them (spec.md §6).
func loadTemplates(svcCfg *config.ServiceConfig) *templates.Registry {
	reg := templates.NewRegistry()
	templates.SeedPrebuilt(reg)
	if svcCfg.TemplatesPath != "" {
		if err := templates.LoadDirectory(reg, svcCfg.TemplatesPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load crawl templates from %s: %s\n", svcCfg.TemplatesPath, err)
		}
	}
	return reg
}

// RunServe wires the content storage, crawl session manager, job queue and
// HTTP search API together and blocks until SIGINT/SIGTERM, shutting the
// server down gracefully.
func RunServe(svcCfg *config.ServiceConfig) {
	sink := metadata.NewRecorder()
	store := storage.New(sink, svcCfg.DocumentStoreDSN, svcCfg.FullTextIndexURI, svcCfg.FullTextIndexName, svcCfg.FullTextKeyPrefix)
	crawlMgr := crawler.NewManager(sink, store)
	jobQueue := queue.New(sink, svcCfg.QueueRedisURI)

	reapCtx, cancelReap := context.WithCancel(context.Background())
	go crawlMgr.RunReaper(reapCtx, 10*time.Minute, time.Hour)
	defer cancelReap()

	api := httpapi.New(store, crawlMgr, jobQueue, sink, nil)
	api.SetTemplates(loadTemplates(svcCfg))
	srv := &http.Server{Addr: svcCfg.HTTPAddr, Handler: api.Handler()}

	go runCorpusStatisticsRefresh(reapCtx, api, 15*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "search API stopped: %s\n", err)
		}
	case <-sigCh:
		fmt.Println("shutting down search API")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// runCorpusStatisticsRefresh periodically rebuilds the Scorer's BM25/
// TF-IDF corpus statistics from a sample of the full-text index, per
// spec.md §9's Open Question decision that a refresh cadence is
// implementation-defined. It runs until ctx is cancelled.
func runCorpusStatisticsRefresh(ctx context.Context, api *httpapi.API, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := api.RefreshCorpusStatistics(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to refresh corpus statistics: %s\n", err)
			}
		}
	}
}

// RunWorker starts svcCfg.WorkerCount job-queue workers and blocks until
// SIGINT/SIGTERM, letting in-flight jobs finish before exiting.
func RunWorker(svcCfg *config.ServiceConfig) {
	sink := metadata.NewRecorder()
	store := storage.New(sink, svcCfg.DocumentStoreDSN, svcCfg.FullTextIndexURI, svcCfg.FullTextIndexName, svcCfg.FullTextKeyPrefix)
	crawlMgr := crawler.NewManager(sink, store)
	jobQueue := queue.New(sink, svcCfg.QueueRedisURI)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewWorkerPool(jobQueue, crawlMgr, store, sink, svcCfg.WorkerCount)
	pool.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("shutting down queue workers")
	cancel()
	pool.Wait()
}
