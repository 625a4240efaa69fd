package reachability

import (
	"fmt"
	"strings"

	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/transportdata"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "neighbours",
		Usage: "List the stations directly served from a station",
		Flags: append(transportdata.NetworkFlags(),
			&cli.StringFlag{
				Name:     "station",
				Usage:    "Station to list neighbours of",
				Required: true,
			},
		),
		Action: func(c *cli.Context) error {
			repository, err := transportdata.LoadFromCLI(c)
			if err != nil {
				return err
			}

			stationRef := c.String("station")
			if _, err := repository.GetStation(stationRef); err != nil {
				return err
			}

			graph, err := journeygraph.Build(repository)
			if err != nil {
				return err
			}

			adjacency := BuildAdjacency(repository)
			reachable := NewRouteReachable(graph, repository)

			for _, neighbour := range adjacency.Neighbours(stationRef) {
				cost, _ := adjacency.Cost(stationRef, neighbour)

				var routeRefs []string
				for _, route := range reachable.RoutesBetweenAdjacentStations(stationRef, neighbour) {
					routeRefs = append(routeRefs, route.PrimaryIdentifier)
				}

				fmt.Printf("%s -> %s %d mins (%s)\n", stationRef, neighbour, cost, strings.Join(routeRefs, ", "))
			}

			return nil
		},
	}
}
