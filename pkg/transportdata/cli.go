package transportdata

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/database"
	"github.com/urfave/cli/v2"
)

var ErrNoNetwork = errors.New("no network source given")

// NetworkFlags selects where a command reads the network from
func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "network",
			Usage: "YAML network file to plan over",
		},
		&cli.BoolFlag{
			Name:  "mongo",
			Usage: "Read the network from MongoDB",
		},
		&cli.BoolFlag{
			Name:  "sample",
			Usage: "Use the built in sample tram network",
		},
	}
}

func LoadFromCLI(c *cli.Context) (*Memory, error) {
	switch {
	case c.String("network") != "":
		return LoadFromYAMLFile(c.String("network"))
	case c.Bool("mongo"):
		if err := database.ConnectMongoDB(); err != nil {
			return nil, err
		}
		return LoadFromMongo(c.Context, database.MongoGlobalInstance.Database)
	case c.Bool("sample"):
		log.Info().Msg("Using the sample network")
		return SampleNetwork()
	}

	return nil, ErrNoNetwork
}
