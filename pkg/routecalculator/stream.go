package routecalculator

import (
	"context"
	"sync"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/heuristics"
)

type producer func(ctx context.Context) (*ctdf.RawJourney, error)

// JourneyStream is a cursor over the journeys found for one query. Journeys are
// only searched for as Next is called and Close must always be called, it is
// what releases anything the query added to the graph.
type JourneyStream struct {
	produce producer
	reasons *heuristics.ServiceReasons

	current  *ctdf.RawJourney
	err      error
	produced  int
	done      bool
	exhausted bool

	mutex     sync.Mutex
	closeOnce sync.Once
	onClose   []func()
}

func newJourneyStream(produce producer, reasons *heuristics.ServiceReasons) *JourneyStream {
	return &JourneyStream{
		produce: produce,
		reasons: reasons,
	}
}

// EmptyStream has nothing in it, a valid answer rather than an error
func EmptyStream() *JourneyStream {
	return newJourneyStream(nil, nil)
}

func (s *JourneyStream) Next(ctx context.Context) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.done || s.err != nil || s.produce == nil {
		s.current = nil
		return false
	}

	journey, err := s.produce(ctx)
	if err != nil {
		s.err = err
		s.current = nil
		return false
	}
	if journey == nil {
		s.done = true
		s.exhausted = true
		s.current = nil
		return false
	}

	s.current = journey
	s.produced++

	return true
}

func (s *JourneyStream) Current() *ctdf.RawJourney {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.current
}

func (s *JourneyStream) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.err
}

// Reasons is nil for streams that never searched
func (s *JourneyStream) Reasons() *heuristics.ServiceReasons {
	return s.reasons
}

// OnClose registers cleanup to run when the stream is closed, in the order added
func (s *JourneyStream) OnClose(cleanup func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.onClose = append(s.onClose, cleanup)
}

func (s *JourneyStream) Close() error {
	s.closeOnce.Do(func() {
		s.mutex.Lock()
		s.done = true
		s.current = nil
		cleanups := s.onClose
		nothingFound := s.exhausted && s.produced == 0
		s.mutex.Unlock()

		if nothingFound && s.reasons != nil {
			s.reasons.ReportReasons()
		}

		for _, cleanup := range cleanups {
			cleanup()
		}
	})

	return nil
}

// All drains and closes the stream
func (s *JourneyStream) All(ctx context.Context) ([]*ctdf.RawJourney, error) {
	defer s.Close()

	var journeys []*ctdf.RawJourney
	for s.Next(ctx) {
		journeys = append(journeys, s.Current())
	}

	return journeys, s.Err()
}
