package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RahulJ0hn/Clarifi/internal/ai"
	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/datastore"
	"github.com/RahulJ0hn/Clarifi/internal/differ"
	"github.com/RahulJ0hn/Clarifi/internal/fetcher"
	"github.com/RahulJ0hn/Clarifi/internal/itemsearch"
	"github.com/RahulJ0hn/Clarifi/internal/logger"
	"github.com/RahulJ0hn/Clarifi/internal/monitor"
	"github.com/RahulJ0hn/Clarifi/internal/notifier"
	"github.com/RahulJ0hn/Clarifi/internal/publisher"
	"github.com/RahulJ0hn/Clarifi/internal/rslimiter"
	"github.com/RahulJ0hn/Clarifi/internal/scheduler"
)

func main() {
	configFile := flag.String("config", "", "Path to the YAML configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for --config")
	flag.Parse()

	if *configFile == "" && *configFileAlias != "" {
		*configFile = *configFileAlias
	}

	gCfg, err := config.LoadGlobalConfig(config.GetConfigPath(*configFile))
	if err != nil {
		log.Fatalf("[FATAL] Could not load configuration: %v", err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Could not initialize logger: %v", err)
	}
	zLogger.Info().Msg("Clarifi monitor engine starting")

	store, err := datastore.NewStore(gCfg.StorageConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to open datastore")
	}
	defer store.Close()

	pub, err := publisher.NewPublisher(gCfg.PublisherConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to connect publisher")
	}
	defer pub.Close()

	describer, err := ai.NewDescriber(gCfg.AIConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize change describer")
	}

	searchEngine := itemsearch.NewEngine(zLogger)
	detector := differ.NewChangeDetector(searchEngine, zLogger)

	var composerDescriber notifier.Describer
	if describer != nil {
		composerDescriber = describer
	}
	composer := notifier.NewComposer(composerDescriber, zLogger)

	pageFetcher := fetcher.NewPageFetcher(gCfg.FetcherConfig, zLogger)
	engine := monitor.NewEngine(store, pageFetcher, searchEngine, detector, composer, pub, zLogger)

	guard := rslimiter.NewGuard(gCfg.LimiterConfig, zLogger)
	sched := scheduler.NewScheduler(gCfg.SchedulerConfig, engine, store, guard, zLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zLogger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	sched.Stop()
	zLogger.Info().Msg("Clarifi monitor engine stopped")
}
