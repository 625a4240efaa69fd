package stages

import (
	"fmt"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/transportdata"
	"github.com/travigo/journeyplanner/pkg/traversal"
)

var ErrUnrecognizedPathEdge = fmt.Errorf("%w: unrecognized path edge", journeygraph.ErrGraphInvariant)

// Mapper turns graph paths into the stages a passenger would follow
type Mapper struct {
	view       journeygraph.View
	repository transportdata.Repository
}

func NewMapper(view journeygraph.View, repository transportdata.Repository) *Mapper {
	return &Mapper{
		view:       view,
		repository: repository,
	}
}

func (m *Mapper) MapFoundPath(path *traversal.FoundPath) (*ctdf.RawJourney, error) {
	stages, err := m.MapPathToStages(path.Edges, path.QueryTime)
	if err != nil {
		return nil, err
	}

	return &ctdf.RawJourney{Stages: stages, QueryTime: path.QueryTime}, nil
}

func (m *Mapper) MapPathToStages(path []*journeygraph.Edge, queryTime ctdf.TimeOfDay) ([]ctdf.Stage, error) {
	switch len(path) {
	case 0:
		return nil, nil
	case 1:
		return m.directWalk(path[0], queryTime)
	}

	state := &mapperState{mapper: m, queryTime: queryTime}

	for _, edge := range path {
		if err := state.apply(edge); err != nil {
			return nil, err
		}
	}

	if state.pendingWalk != nil {
		stage, err := m.walk(state.pendingWalk, queryTime, false)
		if err != nil {
			return nil, err
		}
		state.stages = append(state.stages, stage)
	}

	return state.stages, nil
}

func (m *Mapper) directWalk(edge *journeygraph.Edge, queryTime ctdf.TimeOfDay) ([]ctdf.Stage, error) {
	if edge.Type != journeygraph.EdgeWalksTo && edge.Type != journeygraph.EdgeWalksFrom {
		return nil, fmt.Errorf("%w: %s as the only edge", ErrUnrecognizedPathEdge, edge.Type)
	}

	stage, err := m.walk(edge, queryTime, edge.Type == journeygraph.EdgeWalksFrom)
	if err != nil {
		return nil, err
	}

	return []ctdf.Stage{stage}, nil
}

func (m *Mapper) walk(edge *journeygraph.Edge, start ctdf.TimeOfDay, towardsMyLocation bool) (ctdf.Stage, error) {
	origin, err := m.location(edge.From)
	if err != nil {
		return ctdf.Stage{}, err
	}
	destination, err := m.location(edge.To)
	if err != nil {
		return ctdf.Stage{}, err
	}

	return ctdf.Stage{
		Type:                ctdf.StageTypeWalking,
		Origin:              origin,
		Destination:         destination,
		TransportType:       ctdf.TransportTypeWalk,
		FirstDepartureTime:  start,
		ExpectedArrivalTime: start.PlusMinutes(edge.Cost),
		Cost:                edge.Cost,
		TowardsMyLocation:   towardsMyLocation,
	}, nil
}

func (m *Mapper) location(id journeygraph.NodeID) (ctdf.StageLocation, error) {
	node, err := m.view.Node(id)
	if err != nil {
		return ctdf.StageLocation{}, err
	}

	if node.Kind == journeygraph.KindQueryNode {
		return ctdf.StageLocation{Name: node.Name, Location: node.Location}, nil
	}

	return m.stationLocation(node.StationRef)
}

func (m *Mapper) stationLocation(stationRef string) (ctdf.StageLocation, error) {
	station, err := m.repository.GetStation(stationRef)
	if err != nil {
		return ctdf.StageLocation{}, err
	}

	return ctdf.StageLocation{
		StationRef: station.PrimaryIdentifier,
		Name:       station.PrimaryName,
		Location:   station.Location,
	}, nil
}
