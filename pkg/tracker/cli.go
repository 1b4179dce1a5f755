package tracker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/vesselsim/vesselsim/pkg/database"
	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/position"
	"github.com/vesselsim/vesselsim/pkg/redis_client"
	"github.com/vesselsim/vesselsim/pkg/util"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "tracker",
		Usage: "Track vessel positions on the configured lakes",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run an instance of the vessel position tracker",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "lakes",
						Usage: "Directory containing lake definitions",
					},
					&cli.DurationFlag{
						Name:  "tick",
						Usage: "Interval between position ticks",
						Value: DefaultTickInterval,
					},
					&cli.DurationFlag{
						Name:  "reload",
						Usage: "Interval between schedule reloads",
						Value: DefaultReloadInterval,
					},
					&cli.StringFlag{
						Name:  "sim-start",
						Usage: "Run on a simulated clock starting at this RFC3339 instant",
					},
					&cli.Float64Flag{
						Name:  "sim-speed",
						Usage: "Simulated clock speed multiplier",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "archive",
						Usage: "Archive journey segments to MongoDB",
					},
				},
				Action: func(c *cli.Context) error {
					env := util.GetEnvironmentVariables()

					if err := redis_client.Connect(false); err != nil {
						return err
					}
					if err := database.Connect(c.Bool("archive")); err != nil {
						return err
					}

					lakesDirectory := c.String("lakes")
					if lakesDirectory == "" {
						lakesDirectory = env["VESSELSIM_LAKES_DIRECTORY"]
					}
					if lakesDirectory == "" {
						lakesDirectory = "data/lakes"
					}

					registry, err := lakes.LoadDirectory(lakesDirectory)
					if err != nil {
						return err
					}

					var clock position.Clock = position.RealClock{}
					if c.String("sim-start") != "" {
						start, err := time.Parse(time.RFC3339, c.String("sim-start"))
						if err != nil {
							return err
						}

						simClock := position.NewSimClock(start, c.Float64("sim-speed"))
						clock = simClock

						log.Info().
							Time("start", start).
							Float64("speed", c.Float64("sim-speed")).
							Msg("Running on simulated clock")
					}

					var publisher Publisher
					if redis_client.Client != nil {
						publisher = RedisPublisher{}
					}

					manager := &TrackerManager{
						Registry: registry,

						Clock:     clock,
						Publisher: publisher,

						DeploymentsURL:  env["VESSELSIM_DEPLOYMENTS_URL"],
						ArchiveSegments: c.Bool("archive") && database.Connected(),

						TickInterval:   c.Duration("tick"),
						ReloadInterval: c.Duration("reload"),
					}

					ctx, cancel := context.WithCancel(context.Background())
					defer cancel()

					manager.Run(ctx)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					<-signals

					log.Info().Msg("Shutting down vessel position trackers")

					return nil
				},
			},
		},
	}
}
