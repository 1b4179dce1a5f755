package geometry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/vesselsim/vesselsim/pkg/cachestore"
	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "geometry",
		Usage: "Inspect lake route geometry",
		Subcommands: []*cli.Command{
			{
				Name:  "inspect",
				Usage: "Print polyline and stop statistics for a lake",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "lakes",
						Usage: "Directory containing lake definitions",
						Value: "data/lakes",
					},
					&cli.StringFlag{
						Name:     "lake",
						Usage:    "Lake identifier to inspect",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					registry, err := lakes.LoadDirectory(c.String("lakes"))
					if err != nil {
						return err
					}

					lake, found := registry.Get(c.String("lake"))
					if !found {
						log.Fatal().Str("lake", c.String("lake")).Msg("Unknown lake")
					}

					store := NewStore(registry,
						cachestore.NewMemory[[]vdm.RoutePolyline](time.Hour, 16),
						cachestore.NewMemory[[]vdm.Station](time.Hour, 16))

					polylines, err := store.LoadPolylines(context.Background(), lake)
					if err != nil {
						return err
					}

					for _, polyline := range polylines {
						log.Info().
							Str("id", polyline.ID).
							Str("name", polyline.Name).
							Str("ref", polyline.Ref).
							Int("points", len(polyline.Points)).
							Float64("lengthkm", polyline.LengthKm()).
							Msg("Polyline")
					}

					stops, err := store.LoadStops(context.Background(), lake)
					if err != nil {
						return err
					}

					for _, stop := range stops {
						log.Info().
							Str("name", stop.Name).
							Float64("lat", stop.Latitude).
							Float64("lon", stop.Longitude).
							Msg("Stop")
					}

					log.Info().
						Int("polylines", len(polylines)).
						Int("stops", len(stops)).
						Msg("Geometry summary")

					return nil
				},
			},
		},
	}
}
