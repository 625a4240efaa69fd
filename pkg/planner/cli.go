package planner

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/database"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/plancache"
	"github.com/travigo/journeyplanner/pkg/reachability"
	"github.com/travigo/journeyplanner/pkg/redis_client"
	"github.com/travigo/journeyplanner/pkg/routecalculator"
	"github.com/travigo/journeyplanner/pkg/spatial"
	"github.com/travigo/journeyplanner/pkg/transportdata"
	"github.com/travigo/journeyplanner/pkg/util"
	"github.com/urfave/cli/v2"
)

func endpointFromCLI(c *cli.Context, prefix string) (Endpoint, error) {
	if c.IsSet(prefix+"-lat") || c.IsSet(prefix+"-lon") {
		if c.String(prefix) != "" {
			return Endpoint{}, errors.New("give either --" + prefix + " or a location, not both")
		}
		return LocationEndpoint(c.Float64(prefix+"-lat"), c.Float64(prefix+"-lon")), nil
	}

	return StationEndpoint(c.String(prefix)), nil
}

func requestFromCLI(c *cli.Context) (Request, error) {
	from, err := endpointFromCLI(c, "from")
	if err != nil {
		return Request{}, err
	}
	to, err := endpointFromCLI(c, "to")
	if err != nil {
		return Request{}, err
	}

	date, err := util.ParseDate(c.String("date"))
	if err != nil {
		return Request{}, err
	}
	queryTime, err := ctdf.ParseTimeOfDay(c.String("time"))
	if err != nil {
		return Request{}, err
	}

	request := Request{
		From:     from,
		To:       to,
		Date:     date,
		Time:     queryTime,
		ArriveBy: c.Bool("arrive-by"),
	}

	if c.IsSet("max-changes") {
		maxChanges := c.Int("max-changes")
		request.MaxChanges = &maxChanges
	}

	return request, nil
}

func graphFromCLI(c *cli.Context, repository transportdata.Repository) (*journeygraph.Graph, error) {
	if !c.Bool("neo4j") {
		return journeygraph.Build(repository)
	}

	if err := database.ConnectNeo4j(); err != nil {
		return nil, err
	}
	defer database.Disconnect(c.Context)

	return journeygraph.NewNeo4jStore(database.Neo4jDriver, database.Neo4jDatabase).Load(c.Context)
}

func RegisterCLI() *cli.Command {
	flags := append(transportdata.NetworkFlags(),
		&cli.StringFlag{
			Name:  "from",
			Usage: "Station to start from",
		},
		&cli.Float64Flag{
			Name:  "from-lat",
			Usage: "Latitude to start from",
		},
		&cli.Float64Flag{
			Name:  "from-lon",
			Usage: "Longitude to start from",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "Station to travel to",
		},
		&cli.Float64Flag{
			Name:  "to-lat",
			Usage: "Latitude to travel to",
		},
		&cli.Float64Flag{
			Name:  "to-lon",
			Usage: "Longitude to travel to",
		},
		&cli.StringFlag{
			Name:     "date",
			Usage:    "Date of travel as YYYY-MM-DD",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "time",
			Usage:    "Time to depart after (or arrive by) as HH:MM",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "arrive-by",
			Usage: "Treat --time as the time to arrive by",
		},
		&cli.IntFlag{
			Name:  "max-changes",
			Usage: "Override the configured maximum number of changes",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format, one of text, csv or json",
			Value: string(FormatText),
		},
		&cli.BoolFlag{
			Name:  "cache",
			Usage: "Cache plans in Redis",
		},
		&cli.BoolFlag{
			Name:  "neo4j",
			Usage: "Use the graph stored in Neo4j instead of building one",
		},
	)

	return &cli.Command{
		Name:  "plan",
		Usage: "Plan a journey between two stations or locations",
		Flags: flags,
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			format, err := ParseFormat(c.String("format"))
			if err != nil {
				return err
			}

			request, err := requestFromCLI(c)
			if err != nil {
				return err
			}

			repository, err := transportdata.LoadFromCLI(c)
			if err != nil {
				return err
			}

			graph, err := graphFromCLI(c, repository)
			if err != nil {
				return err
			}

			matrix := reachability.BuildMatrix(graph, repository)
			calculator := routecalculator.NewRouteCalculator(graph, repository, matrix, cfg)
			planner := New(calculator, spatial.NewStationIndex(repository))

			if c.Bool("cache") {
				if err := redis_client.Connect(); err != nil {
					log.Fatal().Err(err).Msg("Failed to connect to Redis")
				}

				expiry, err := cfg.CacheExpiryDuration()
				if err != nil {
					return err
				}
				planner.WithCache(plancache.New(redis_client.Client, expiry))
			}

			result, err := planner.Plan(c.Context, request)
			if err != nil {
				return err
			}

			return WriteResult(os.Stdout, format, result)
		},
	}
}
