package journeygraph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/ctdf"
)

const (
	nodeLabel     = "JourneyNode"
	saveBatchSize = 1000
)

// Neo4jStore persists a built graph so it can be inspected with cypher and
// reloaded without rebuilding from the timetable
type Neo4jStore struct {
	Driver   neo4j.DriverWithContext
	Database string
}

func NewNeo4jStore(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{
		Driver:   driver,
		Database: database,
	}
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.Database, AccessMode: mode})
}

// Save replaces whatever graph is currently stored
func (s *Neo4jStore) Save(ctx context.Context, graph *Graph) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", nodeLabel), map[string]any{})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("clearing stored graph: %w", err)
	}

	for kind := range nodeKindNames {
		var batch []map[string]any
		for _, id := range graph.NodesOfKind(kind) {
			node, _ := graph.Node(id)
			batch = append(batch, nodeProperties(node))

			if len(batch) >= saveBatchSize {
				if err := s.writeNodes(ctx, session, kind, batch); err != nil {
					return err
				}
				batch = nil
			}
		}
		if err := s.writeNodes(ctx, session, kind, batch); err != nil {
			return err
		}
	}

	batches := map[EdgeType][]map[string]any{}
	sequence := 0
	for _, node := range graph.nodes {
		for _, edge := range graph.edges[node.ID] {
			batches[edge.Type] = append(batches[edge.Type], edgeProperties(edge, sequence))
			sequence++

			if len(batches[edge.Type]) >= saveBatchSize {
				if err := s.writeEdges(ctx, session, edge.Type, batches[edge.Type]); err != nil {
					return err
				}
				batches[edge.Type] = nil
			}
		}
	}
	for edgeType, batch := range batches {
		if err := s.writeEdges(ctx, session, edgeType, batch); err != nil {
			return err
		}
	}

	log.Info().Int("nodes", graph.NodeCount()).Int("edges", graph.EdgeCount()).Msg("Saved journey graph to neo4j")

	return nil
}

func (s *Neo4jStore) writeNodes(ctx context.Context, session neo4j.SessionWithContext, kind NodeKind, batch []map[string]any) error {
	if len(batch) == 0 {
		return nil
	}

	cypher := fmt.Sprintf("UNWIND $nodes AS node CREATE (n:%s:%s) SET n = node", nodeLabel, kind)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, cypher, map[string]any{"nodes": batch})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("writing %s nodes: %w", kind, err)
	}

	return nil
}

func (s *Neo4jStore) writeEdges(ctx context.Context, session neo4j.SessionWithContext, edgeType EdgeType, batch []map[string]any) error {
	if len(batch) == 0 {
		return nil
	}

	cypher := fmt.Sprintf(`
		UNWIND $edges AS edge
		MATCH (a:%[1]s {id: edge.from})
		MATCH (b:%[1]s {id: edge.to})
		CREATE (a)-[r:%[2]s]->(b)
		SET r = edge
	`, nodeLabel, edgeType)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, cypher, map[string]any{"edges": batch})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("writing %s edges: %w", edgeType, err)
	}

	return nil
}

// NodeIDsByKind queries by label, the stored equivalent of the kind index
func (s *Neo4jStore) NodeIDsByKind(ctx context.Context, kind NodeKind) ([]NodeID, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	cypher := fmt.Sprintf("MATCH (n:%s:%s) RETURN n.id AS id ORDER BY n.id", nodeLabel, kind)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, cypher, map[string]any{})
		if err != nil {
			return nil, err
		}

		return records.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	var ids []NodeID
	for _, record := range result.([]*neo4j.Record) {
		value, _ := record.Get("id")
		id, ok := value.(int64)
		if !ok {
			return nil, fmt.Errorf("%w: stored node without an id", ErrGraphInvariant)
		}
		ids = append(ids, NodeID(id))
	}

	return ids, nil
}

// Load rebuilds a graph from what Save wrote, node ids and edge order are preserved
func (s *Neo4jStore) Load(ctx context.Context) (*Graph, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	nodeRecords, err := s.collect(ctx, session, fmt.Sprintf("MATCH (n:%s) RETURN properties(n) AS props ORDER BY n.id", nodeLabel))
	if err != nil {
		return nil, fmt.Errorf("reading stored nodes: %w", err)
	}
	edgeRecords, err := s.collect(ctx, session, fmt.Sprintf("MATCH (:%[1]s)-[r]->(:%[1]s) RETURN type(r) AS type, properties(r) AS props ORDER BY r.sequence", nodeLabel))
	if err != nil {
		return nil, fmt.Errorf("reading stored edges: %w", err)
	}

	graph := newGraph()

	for _, record := range nodeRecords {
		value, _ := record.Get("props")
		props, _ := value.(map[string]any)

		node, err := nodeFromProperties(props)
		if err != nil {
			return nil, err
		}

		expected := node.ID
		graph.addNode(node)
		if node.ID != expected {
			return nil, fmt.Errorf("%w: stored node ids are not contiguous at %d", ErrGraphInvariant, expected)
		}
	}

	for _, record := range edgeRecords {
		typeValue, _ := record.Get("type")
		typeName, _ := typeValue.(string)
		edgeType, err := ParseEdgeType(typeName)
		if err != nil {
			return nil, err
		}

		value, _ := record.Get("props")
		props, _ := value.(map[string]any)

		edge, err := edgeFromProperties(edgeType, props)
		if err != nil {
			return nil, err
		}
		graph.addEdge(edge)
	}

	log.Info().Int("nodes", graph.NodeCount()).Int("edges", graph.EdgeCount()).Msg("Loaded journey graph from neo4j")

	return graph, nil
}

func (s *Neo4jStore) collect(ctx context.Context, session neo4j.SessionWithContext, cypher string) ([]*neo4j.Record, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, cypher, map[string]any{})
		if err != nil {
			return nil, err
		}

		return records.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	return result.([]*neo4j.Record), nil
}

func nodeProperties(node *Node) map[string]any {
	return map[string]any{
		"id":        int64(node.ID),
		"kind":      node.Kind.String(),
		"name":      node.Name,
		"station":   node.StationRef,
		"route":     node.RouteRef,
		"platform":  node.PlatformRef,
		"service":   node.ServiceRef,
		"hour":      int64(node.Hour),
		"time":      int64(node.Time.MinutesOfDay()),
		"earliest":  int64(node.EarliestDeparture.MinutesOfDay()),
		"latest":    int64(node.LatestDeparture.MinutesOfDay()),
		"latitude":  node.Location.Latitude,
		"longitude": node.Location.Longitude,
	}
}

func nodeFromProperties(props map[string]any) (*Node, error) {
	kind, err := ParseNodeKind(stringProperty(props, "kind"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGraphInvariant, err)
	}

	return &Node{
		ID:                NodeID(intProperty(props, "id")),
		Kind:              kind,
		Name:              stringProperty(props, "name"),
		StationRef:        stringProperty(props, "station"),
		RouteRef:          stringProperty(props, "route"),
		PlatformRef:       stringProperty(props, "platform"),
		ServiceRef:        stringProperty(props, "service"),
		Hour:              int(intProperty(props, "hour")),
		Time:              ctdf.TimeOf(0, int(intProperty(props, "time"))),
		EarliestDeparture: ctdf.TimeOf(0, int(intProperty(props, "earliest"))),
		LatestDeparture:   ctdf.TimeOf(0, int(intProperty(props, "latest"))),
		Location: ctdf.LatLong{
			Latitude:  floatProperty(props, "latitude"),
			Longitude: floatProperty(props, "longitude"),
		},
	}, nil
}

func edgeProperties(edge *Edge, sequence int) map[string]any {
	return map[string]any{
		"from":     int64(edge.From),
		"to":       int64(edge.To),
		"sequence": int64(sequence),
		"cost":     int64(edge.Cost),
		"station":  edge.StationRef,
		"route":    edge.RouteRef,
		"platform": edge.PlatformRef,
		"service":  edge.ServiceRef,
		"trip":     edge.TripRef,
		"time":     int64(edge.Time.MinutesOfDay()),
	}
}

func edgeFromProperties(edgeType EdgeType, props map[string]any) (*Edge, error) {
	cost := intProperty(props, "cost")
	if cost < 0 {
		return nil, fmt.Errorf("%w: negative cost on stored %s edge", ErrGraphInvariant, edgeType)
	}

	return &Edge{
		Type:        edgeType,
		From:        NodeID(intProperty(props, "from")),
		To:          NodeID(intProperty(props, "to")),
		Cost:        int(cost),
		StationRef:  stringProperty(props, "station"),
		RouteRef:    stringProperty(props, "route"),
		PlatformRef: stringProperty(props, "platform"),
		ServiceRef:  stringProperty(props, "service"),
		TripRef:     stringProperty(props, "trip"),
		Time:        ctdf.TimeOf(0, int(intProperty(props, "time"))),
	}, nil
}

func stringProperty(props map[string]any, key string) string {
	value, _ := props[key].(string)
	return value
}

func intProperty(props map[string]any, key string) int64 {
	switch value := props[key].(type) {
	case int64:
		return value
	case int:
		return int64(value)
	case float64:
		return int64(value)
	}

	return 0
}

func floatProperty(props map[string]any, key string) float64 {
	switch value := props[key].(type) {
	case float64:
		return value
	case int64:
		return float64(value)
	}

	return 0
}
