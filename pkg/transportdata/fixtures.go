package transportdata

import (
	_ "embed"
)

//go:embed fixtures/network.yml
var sampleNetwork []byte

// SampleNetwork is a small tram network with two lines crossing at Cornbrook,
// Deansgate-Castlefield and St Peter's Square
func SampleNetwork() (*Memory, error) {
	return LoadFromYAML(sampleNetwork)
}
