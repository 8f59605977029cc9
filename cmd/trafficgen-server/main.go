package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/seawaysim/traffic-generator/core"
	"github.com/seawaysim/traffic-generator/internal/api"
	"github.com/seawaysim/traffic-generator/internal/config"
	"github.com/seawaysim/traffic-generator/internal/landmask"
	"github.com/seawaysim/traffic-generator/internal/logging"
	"github.com/seawaysim/traffic-generator/internal/observability"
	"github.com/seawaysim/traffic-generator/kb"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	addr := flag.String("addr", ":8080", "TCP address the HTTP API listens on")
	ownShipFile := flag.String("own-ship", "data/own_ship/own_ship.json", "path to the default own ship file")
	targetFolder := flag.String("targets", "data/target_ships", "folder with target ship templates")
	settingsFile := flag.String("settings", "data/encounter_settings.json", "path to the encounter settings file (json or yaml)")
	landmaskFile := flag.String("landmask", "", "path to a land mask file; empty disables the land check")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewGeneratorCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	settings, err := config.ReadEncounterSettings(*settingsFile)
	if err != nil {
		log.Error(ctx, "failed to read settings", logging.String("error", err.Error()))
		os.Exit(1)
	}

	var land core.LandChecker
	if *landmaskFile != "" {
		grid, err := landmask.Load(*landmaskFile)
		if err != nil {
			log.Error(ctx, "failed to load land mask", logging.String("error", err.Error()))
			os.Exit(1)
		}
		land = grid
	} else {
		settings.DisableLandCheck = true
		log.Warn(ctx, "no land mask configured; land check disabled")
	}

	store := kb.NewShipStore()

	ownShip, err := config.ReadOwnShip(*ownShipFile)
	if err != nil {
		log.Error(ctx, "failed to read own ship", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if err := store.SetOwnShip(ownShip); err != nil {
		log.Error(ctx, "invalid own ship", logging.String("error", err.Error()))
		os.Exit(1)
	}

	templates, err := config.ReadTargetShipFolder(*targetFolder)
	if err != nil {
		log.Error(ctx, "failed to read target ships", logging.String("error", err.Error()))
		os.Exit(1)
	}
	for _, template := range templates {
		if err := store.AddTemplate(template); err != nil {
			log.Error(ctx, "invalid target ship template", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}

	server := api.NewServer(store, settings, land, log, collector, version)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info(ctx, "starting traffic generator API", logging.String("addr", *addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
