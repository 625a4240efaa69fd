package planner

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/travigo/journeyplanner/pkg/ctdf"
)

type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(value string) (Format, error) {
	switch format := Format(strings.ToLower(value)); format {
	case FormatText, FormatCSV, FormatJSON:
		return format, nil
	}

	return "", fmt.Errorf("unknown output format %q", value)
}

type stageRow struct {
	Journey     int    `csv:"journey"`
	Stage       int    `csv:"stage"`
	Type        string `csv:"type"`
	From        string `csv:"from"`
	To          string `csv:"to"`
	Route       string `csv:"route"`
	Trip        string `csv:"trip"`
	Platform    string `csv:"platform"`
	Departs     string `csv:"departs"`
	Arrives     string `csv:"arrives"`
	Cost        int    `csv:"cost"`
	PassedStops int    `csv:"passed_stops"`
}

func stageRows(journeys []*ctdf.RawJourney) []*stageRow {
	var rows []*stageRow

	for journeyIndex, journey := range journeys {
		for stageIndex, stage := range journey.Stages {
			rows = append(rows, &stageRow{
				Journey:     journeyIndex + 1,
				Stage:       stageIndex + 1,
				Type:        string(stage.Type),
				From:        locationName(stage.Origin),
				To:          locationName(stage.Destination),
				Route:       stage.RouteRef,
				Trip:        stage.TripRef,
				Platform:    stage.PlatformRef,
				Departs:     stage.FirstDepartureTime.String(),
				Arrives:     stage.ExpectedArrivalTime.String(),
				Cost:        stage.Cost,
				PassedStops: stage.PassedStops,
			})
		}
	}

	return rows
}

func locationName(location ctdf.StageLocation) string {
	if location.IsStation() {
		return location.StationRef
	}

	return location.Location.String()
}

func WriteResult(w io.Writer, format Format, result *Result) error {
	switch format {
	case FormatCSV:
		return gocsv.Marshal(stageRows(result.Journeys), w)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	return writeText(w, result)
}

func writeText(w io.Writer, result *Result) error {
	var builder strings.Builder

	fmt.Fprintf(&builder, "%s\n", result.Request)

	if len(result.Journeys) == 0 {
		builder.WriteString("No journeys found\n")

		reasons := make([]string, 0, len(result.Diagnostics))
		for reason := range result.Diagnostics {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&builder, "  %s: %d\n", reason, result.Diagnostics[reason])
		}
	}

	for index, journey := range result.Journeys {
		fmt.Fprintf(&builder, "\nJourney %d: %s -> %s, %d mins, %d changes\n",
			index+1, journey.DepartureTime(), journey.ArrivalTime(), journey.Duration(), journey.Changes())

		for _, stage := range journey.Stages {
			switch stage.Type {
			case ctdf.StageTypeWalking:
				fmt.Fprintf(&builder, "  %s walk from %s to %s, arrive %s\n",
					stage.FirstDepartureTime, stage.Origin.Name, stage.Destination.Name, stage.ExpectedArrivalTime)
			default:
				fmt.Fprintf(&builder, "  %s %s %s towards %s from %s to %s, arrive %s (%d stops)\n",
					stage.FirstDepartureTime, stage.TransportType, stage.RouteRef, stage.Headsign,
					stage.Origin.Name, stage.Destination.Name, stage.ExpectedArrivalTime, stage.PassedStops)
			}
		}
	}

	_, err := io.WriteString(w, builder.String())
	return err
}
