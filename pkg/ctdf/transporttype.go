package ctdf

import "strings"

type TransportType string

//goland:noinspection GoUnusedConst
const (
	TransportTypeBus     TransportType = "Bus"
	TransportTypeTram    TransportType = "Tram"
	TransportTypeRail    TransportType = "Rail"
	TransportTypeMetro   TransportType = "Metro"
	TransportTypeFerry   TransportType = "Ferry"
	TransportTypeWalk    TransportType = "Walk"
	TransportTypeUnknown TransportType = "UNKNOWN"
)

func ParseTransportType(value string) TransportType {
	for _, transportType := range []TransportType{
		TransportTypeBus, TransportTypeTram, TransportTypeRail, TransportTypeMetro, TransportTypeFerry, TransportTypeWalk,
	} {
		if strings.EqualFold(value, string(transportType)) {
			return transportType
		}
	}

	return TransportTypeUnknown
}
