package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/planner"
	"github.com/travigo/journeyplanner/pkg/reachability"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// stdout is kept for plan output
	if os.Getenv("TRAVIGO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRAVIGO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "journeyplanner",
		Description: "Plans public transport journeys over a timetabled network",

		Commands: []*cli.Command{
			planner.RegisterCLI(),
			journeygraph.RegisterCLI(),
			reachability.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
