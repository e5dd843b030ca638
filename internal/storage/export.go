package storage

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/cruisectl/internal/episode"
)

type ExportRow struct {
	Timestep       int      `json:"timestep"`
	TimeElapsed    float64  `json:"time_elapsed"`
	EgoVelocity    float64  `json:"ego_velocity"`
	DesiredSpeed   float64  `json:"desired_speed"`
	DistanceToLead *float64 `json:"distance_to_lead"`
	LeadSpeed      float64  `json:"lead_speed"`
	Command        *float64 `json:"command,omitempty"`
}

type ExportData struct {
	Scenario string             `json:"scenario"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Rows     []ExportRow        `json:"rows"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// ExportJSON writes the trace and optional metrics as indented JSON. Absent
// gaps become null. Non-finite metrics are dropped.
func ExportJSON(w io.Writer, tr *episode.Trace, metrics map[string]float64) error {
	data := ExportData{
		Scenario: tr.Name,
		Dt:       tr.Dt,
		Duration: tr.Duration(),
		Steps:    len(tr.Rows),
		Rows:     make([]ExportRow, len(tr.Rows)),
	}

	for i, row := range tr.Rows {
		r := ExportRow{
			Timestep:     i,
			TimeElapsed:  tr.Time(i),
			EgoVelocity:  row.EgoVelocity,
			DesiredSpeed: row.TargetSpeed,
			LeadSpeed:    row.LeadVelocity,
		}
		if d, ok := row.DistanceToLead.Distance(); ok {
			r.DistanceToLead = &d
		}
		if i < len(tr.Commands) {
			c := tr.Commands[i]
			r.Command = &c
		}
		data.Rows[i] = r
	}

	if len(metrics) > 0 {
		data.Metrics = make(map[string]float64, len(metrics))
		for k, v := range metrics {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				data.Metrics[k] = v
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
