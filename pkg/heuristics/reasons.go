package heuristics

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
)

type ReasonCode int

const (
	Valid ReasonCode = iota
	DoesNotRunOnQueryDate
	DoesNotOperateOnTime
	TooManyChanges
	TookTooLong
	StationNotReachable
	PathTooLong
)

var reasonNames = map[ReasonCode]string{
	Valid:                 "Valid",
	DoesNotRunOnQueryDate: "DoesNotRunOnQueryDate",
	DoesNotOperateOnTime:  "DoesNotOperateOnTime",
	TooManyChanges:        "TooManyChanges",
	TookTooLong:           "TookTooLong",
	StationNotReachable:   "StationNotReachable",
	PathTooLong:           "PathTooLong",
}

func (c ReasonCode) String() string {
	if name, exists := reasonNames[c]; exists {
		return name
	}

	return fmt.Sprintf("ReasonCode(%d)", int(c))
}

// ServiceReason is the outcome of one admissibility check
type ServiceReason struct {
	Code ReasonCode
	Node journeygraph.NodeID
}

func (r ServiceReason) IsValid() bool {
	return r.Code == Valid
}

func (r ServiceReason) String() string {
	return fmt.Sprintf("%s at node %d", r.Code, r.Node)
}

// ServiceReasons tallies every check made during a query so an empty result
// can be explained afterwards
type ServiceReasons struct {
	logger zerolog.Logger
	counts map[ReasonCode]int
}

func NewServiceReasons(logger zerolog.Logger) *ServiceReasons {
	return &ServiceReasons{
		logger: logger,
		counts: map[ReasonCode]int{},
	}
}

func (s *ServiceReasons) Record(reason ServiceReason) ServiceReason {
	s.counts[reason.Code]++
	return reason
}

func (s *ServiceReasons) Count(code ReasonCode) int {
	return s.counts[code]
}

func (s *ServiceReasons) Rejections() int {
	total := 0
	for code, count := range s.counts {
		if code != Valid {
			total += count
		}
	}

	return total
}

func (s *ServiceReasons) ReportReasons() {
	codes := make([]ReasonCode, 0, len(s.counts))
	for code := range s.counts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	event := s.logger.Info().Int("rejections", s.Rejections())
	for _, code := range codes {
		event = event.Int(code.String(), s.counts[code])
	}
	event.Msg("No journeys found")
}

// Summary is the count of each rejection keyed by reason name
func (s *ServiceReasons) Summary() map[string]int {
	summary := map[string]int{}
	for code, count := range s.counts {
		if code != Valid {
			summary[code.String()] = count
		}
	}

	return summary
}
