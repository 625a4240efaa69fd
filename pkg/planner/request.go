package planner

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/util"
)

var ErrInvalidRequest = errors.New("invalid plan request")

// Endpoint is either a station or a point to walk to or from
type Endpoint struct {
	StationRef string        `json:",omitempty"`
	Location   *ctdf.LatLong `json:",omitempty"`
}

func StationEndpoint(stationRef string) Endpoint {
	return Endpoint{StationRef: stationRef}
}

func LocationEndpoint(latitude float64, longitude float64) Endpoint {
	return Endpoint{Location: &ctdf.LatLong{Latitude: latitude, Longitude: longitude}}
}

func (e Endpoint) IsLocation() bool {
	return e.Location != nil
}

func (e Endpoint) String() string {
	if e.IsLocation() {
		return e.Location.String()
	}

	return e.StationRef
}

func (e Endpoint) validate(name string) error {
	switch {
	case e.IsLocation() && e.StationRef != "":
		return fmt.Errorf("%w: %s is both a station and a location", ErrInvalidRequest, name)
	case e.IsLocation():
		if !e.Location.IsValid() {
			return fmt.Errorf("%w: %s location %s is not valid", ErrInvalidRequest, name, e.Location)
		}
	case e.StationRef == "":
		return fmt.Errorf("%w: %s is missing", ErrInvalidRequest, name)
	}

	return nil
}

func (e Endpoint) equal(other Endpoint) bool {
	if e.IsLocation() != other.IsLocation() {
		return false
	}
	if e.IsLocation() {
		return *e.Location == *other.Location
	}

	return e.StationRef == other.StationRef
}

type Request struct {
	From Endpoint
	To   Endpoint

	Date     time.Time `validate:"required"`
	Time     ctdf.TimeOfDay
	ArriveBy bool

	// MaxChanges overrides the configured limit when set
	MaxChanges *int `validate:"omitempty,min=0,max=20"`
}

var validate = validator.New()

func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	if err := r.From.validate("start"); err != nil {
		return err
	}
	if err := r.To.validate("destination"); err != nil {
		return err
	}

	if r.From.equal(r.To) {
		return fmt.Errorf("%w: start and destination are both %s", ErrInvalidRequest, r.From)
	}

	return nil
}

// Key identifies the request for caching, cfg is the configuration the search
// actually runs with so that any limit shaping the results is part of the key
func (r Request) Key(cfg config.Config) string {
	hash := sha256.New()

	fmt.Fprintf(hash, "%s|%s|%s|%s|%t|",
		r.From,
		r.To,
		r.Date.Format(util.DateLayout),
		r.Time,
		r.ArriveBy,
	)
	fmt.Fprintf(hash, "%d|%d|%d|%d|%d|%d|%d|%g|%g|%t",
		cfg.MaxWait,
		cfg.QueryInterval,
		cfg.MaxChanges,
		cfg.MaxJourneyDuration,
		cfg.MaxNumResults,
		cfg.MaxPathLength,
		cfg.NumOfNearestStopsForWalking,
		cfg.NearestStopRangeKM,
		cfg.WalkingMPH,
		cfg.EdgePerTrip,
	)

	return fmt.Sprintf("%x", hash.Sum(nil))
}

func (r Request) String() string {
	mode := "depart after"
	if r.ArriveBy {
		mode = "arrive by"
	}

	return fmt.Sprintf("%s -> %s on %s %s %s", r.From, r.To, r.Date.Format(util.DateLayout), mode, r.Time)
}
