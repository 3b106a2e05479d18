package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/nbforce/internal/md"
)

type ExportData struct {
	Meta       RunMetadata `json:"meta"`
	Samples    []md.Sample `json:"samples"`
	Positions  []float64   `json:"positions"`
	Velocities []float64   `json:"velocities"`
}

// ExportJSON writes a run as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, result *md.Result) error {
	meta.EnergyDrift = result.EnergyDrift
	data := ExportData{
		Meta:       meta,
		Samples:    result.Samples,
		Positions:  result.Positions,
		Velocities: result.Velocities,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
