package scan

import (
	"time"

	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/pivot"
	"github.com/dd0wney/cluso-takeoff/pkg/takeoff"
)

// Unit labels used on pivot rows.
const (
	UnitLength = "m"
	UnitCount  = "pcs"
)

// Detail is the per-component measurement retained for detail-row export.
type Detail struct {
	Component     model.ComponentID
	Class         model.Class
	Contributions []model.Contribution
	PortDiameters []takeoff.PortDiameter
}

// Stats summarizes one run.
type Stats struct {
	Components    int
	ByClass       map[model.Class]int
	Contributions int
	TotalLength   float64
	LengthByTag   map[string]float64
	Groups        int
	Duration      time.Duration
}

// Report is the complete output of one takeoff run.
type Report struct {
	RunID      string
	Lengths    *pivot.Table
	Counts     *pivot.Table
	Details    []Detail
	Groups     map[model.ComponentID]string
	Exclusions []pivot.Exclusion
	Stats      Stats
}
