package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockbar/internal/cli"
	"stockbar/internal/config"
	"stockbar/internal/svc"
)

const (
	defaultBatchInterval   = 5 * time.Minute
	defaultStaggerInterval = 30 * time.Second
	stateSaveInterval      = time.Minute
	shutdownTimeout        = 10 * time.Second
)

var configFile = flag.String("f", "etc/stockbar.yaml", "the config file")

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting tracker...")

	appCfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	svcCtx := svc.NewServiceContext(appCfg)

	strategy := "both"
	batchInterval := defaultBatchInterval
	staggerInterval := defaultStaggerInterval
	if rc := svcCtx.RefreshConfig; rc != nil {
		if rc.Strategy != "" {
			strategy = rc.Strategy
		}
		if rc.BatchInterval > 0 {
			batchInterval = rc.BatchInterval
		}
		if rc.StaggerInterval > 0 {
			staggerInterval = rc.StaggerInterval
		}
	}
	log.Printf("  - Strategy: %s (batch=%s, stagger=%s)", strategy, batchInterval, staggerInterval)
	log.Printf("  - Tracked symbols: %v", svcCtx.Book.Symbols())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if strategy == "batch" || strategy == "both" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runBatchLoop(ctx, svcCtx, batchInterval)
		}()
	}

	if strategy == "staggered" || strategy == "both" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runStaggerLoop(ctx, svcCtx, staggerInterval)
		}()
	}

	if svcCtx.FxRefresher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svcCtx.FxRefresher.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		runStateSaver(ctx, svcCtx)
	}()

	log.Println("[main] Tracker started. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[main] All tasks stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	if err := svcCtx.SaveState(); err != nil {
		log.Printf("[main] Failed to save state: %v", err)
	} else {
		log.Printf("[main] State saved to %s", svcCtx.StateStore.Path())
	}

	log.Println("[main] Tracker stopped")
}

// runBatchLoop refreshes every eligible symbol in one provider call per cycle.
func runBatchLoop(ctx context.Context, svcCtx *svc.ServiceContext, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once immediately on startup
	refreshBatch(ctx, svcCtx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[batch] Stopping batch refresh loop")
			return
		case <-ticker.C:
			refreshBatch(ctx, svcCtx)
		}
	}
}

func refreshBatch(ctx context.Context, svcCtx *svc.ServiceContext) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := svcCtx.Orchestrator.RefreshAll(ctx); err != nil {
		log.Printf("[batch] [ERROR] %v, took %dms", err, time.Since(start).Milliseconds())
		return
	}
	log.Printf("[batch] [OK] cycle complete, took %dms", time.Since(start).Milliseconds())
}

// runStaggerLoop fetches one symbol per tick, rotating through the book so
// no symbol is starved between batch cycles.
func runStaggerLoop(ctx context.Context, svcCtx *svc.ServiceContext, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[stagger] Stopping staggered refresh loop")
			return
		case <-ticker.C:
			svcCtx.Orchestrator.Tick(ctx)
		}
	}
}

// runStateSaver periodically flushes in-memory state so a crash loses at
// most one interval of bookkeeping.
func runStateSaver(ctx context.Context, svcCtx *svc.ServiceContext) {
	ticker := time.NewTicker(stateSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svcCtx.SaveState(); err != nil {
				log.Printf("[state] [ERROR] save failed: %v", err)
			}
		}
	}
}
