package journeygraph

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/database"
	"github.com/travigo/journeyplanner/pkg/transportdata"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "graph",
		Usage: "Build and inspect the journey graph",
		Subcommands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Build the graph from a network and optionally persist it to Neo4j",
				Flags: append(transportdata.NetworkFlags(),
					&cli.BoolFlag{
						Name:  "neo4j",
						Usage: "Replace the graph stored in Neo4j",
					},
				),
				Action: func(c *cli.Context) error {
					repository, err := transportdata.LoadFromCLI(c)
					if err != nil {
						return err
					}

					graph, err := Build(repository)
					if err != nil {
						return err
					}

					if !c.Bool("neo4j") {
						return nil
					}

					if err := database.ConnectNeo4j(); err != nil {
						return err
					}
					defer database.Disconnect(c.Context)

					store := NewNeo4jStore(database.Neo4jDriver, database.Neo4jDatabase)
					if err := store.Save(c.Context, graph); err != nil {
						return err
					}

					stations, err := store.NodeIDsByKind(c.Context, KindStation)
					if err != nil {
						return err
					}
					log.Info().Int("stations", len(stations)).Msg("Persisted graph to Neo4j")

					return nil
				},
			},
			{
				Name:  "inspect",
				Usage: "Print a node and the edges leaving it",
				Flags: append(transportdata.NetworkFlags(),
					&cli.Int64Flag{
						Name:  "node",
						Usage: "ID of the node",
					},
					&cli.StringFlag{
						Name:  "station",
						Usage: "Station to print instead of a node ID",
					},
				),
				Action: func(c *cli.Context) error {
					repository, err := transportdata.LoadFromCLI(c)
					if err != nil {
						return err
					}

					graph, err := Build(repository)
					if err != nil {
						return err
					}

					id := NodeID(c.Int64("node"))
					if station := c.String("station"); station != "" {
						if id, err = graph.StationNode(station); err != nil {
							return err
						}
					}

					node, err := graph.Node(id)
					if err != nil {
						return err
					}

					fmt.Printf("%# v\n", pretty.Formatter(node))
					for _, edge := range graph.OutgoingEdges(id) {
						pretty.Println(edge)
					}

					return nil
				},
			},
		},
	}
}
