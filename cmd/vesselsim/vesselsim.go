package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/vesselsim/vesselsim/pkg/geometry"
	"github.com/vesselsim/vesselsim/pkg/tracker"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("VESSELSIM_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("VESSELSIM_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "vesselsim",
		Description: "Estimates live lake vessel positions from published schedules",

		Commands: []*cli.Command{
			tracker.RegisterCLI(),
			geometry.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
