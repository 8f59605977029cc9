package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/seawaysim/traffic-generator/core"
	"github.com/seawaysim/traffic-generator/internal/config"
	"github.com/seawaysim/traffic-generator/internal/landmask"
	"github.com/seawaysim/traffic-generator/internal/logging"
	"github.com/seawaysim/traffic-generator/internal/observability"
	"github.com/seawaysim/traffic-generator/kb"
)

func main() {
	situationFolder := flag.String("situations", "data/baseline_situations_input", "folder with situation request files")
	ownShipFile := flag.String("own-ship", "data/own_ship/own_ship.json", "path to the own ship file")
	targetFolder := flag.String("targets", "data/target_ships", "folder with target ship templates")
	settingsFile := flag.String("settings", "data/encounter_settings.json", "path to the encounter settings file (json or yaml)")
	outputFolder := flag.String("output", "data/test_output", "folder the generated situations are written to")
	landmaskFile := flag.String("landmask", "", "path to a land mask file; empty disables the land check")
	seed := flag.Int64("seed", 0, "random seed; 0 derives one from the current time")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

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

	requests, err := config.ReadSituationFolder(*situationFolder)
	if err != nil {
		log.Error(ctx, "failed to read situations", logging.String("error", err.Error()))
		os.Exit(1)
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}
	log.Info(ctx, "generating traffic situations",
		logging.Int("requests", len(requests)),
		logging.Int("templates", len(templates)),
		logging.Any("seed", runSeed),
	)

	generator := core.NewTrafficGenerator(settings, land, log, nil, runSeed)
	situations, err := generator.GenerateSituations(ctx, requests, ownShip, store.Templates())
	if err != nil {
		log.Error(ctx, "generation failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	for _, situation := range situations {
		log.Info(ctx, "situation generated",
			logging.String("title", situation.Title),
			logging.Int("requested_encounters", len(situation.Encounters)),
			logging.Int("target_ships", len(situation.TargetShips)),
		)
	}

	if err := config.WriteTrafficSituations(*outputFolder, situations); err != nil {
		log.Error(ctx, "failed to write output", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "wrote traffic situations",
		logging.String("folder", *outputFolder),
		logging.Int("count", len(situations)),
	)
}
