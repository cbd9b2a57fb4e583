package pivot

import (
	"fmt"

	"github.com/dd0wney/cluso-takeoff/pkg/model"
)

// ReasonCode classifies why a component or contribution was excluded from
// normal line routing. Exclusions are recorded for audit, never silently
// dropped.
type ReasonCode string

const (
	ReasonMissingLineTag     ReasonCode = "MissingPipeKey(LineTag)"
	ReasonMissingInstallType ReasonCode = "MissingPipeKey(InstallType)"
	ReasonMissingND          ReasonCode = "MissingND"
	ReasonNoTargetPipe       ReasonCode = "NoTargetPipe"
)

// Exclusion records one excluded component/contribution with its reason.
type Exclusion struct {
	Component model.ComponentID
	Reason    ReasonCode
	Detail    string
}

// FallbackKey builds the synthetic "by material, diameter and install type"
// row label used when a contribution cannot be routed to a known billable
// line. ok=false when the parts are insufficient to form a key.
func FallbackKey(material, install string, nd float64, ndKnown bool) (string, bool) {
	if material == "" || install == "" || !ndKnown {
		return "", false
	}
	return fmt.Sprintf("%s DN%s %s", material, trimmedND(nd), install), true
}

func trimmedND(nd float64) string {
	return model.FloatValue(nd).Text()
}

// Aggregator owns the two report pivots and the exclusion list of a run.
type Aggregator struct {
	Lengths *Table
	Counts  *Table

	exclusions []Exclusion
}

// NewAggregator creates empty pivots.
func NewAggregator() *Aggregator {
	return &Aggregator{
		Lengths: NewTable(),
		Counts:  NewTable(),
	}
}

// AddContribution accumulates an installed length into the length pivot.
func (a *Aggregator) AddContribution(key Key, column string, length float64) {
	a.Lengths.Add(key, column, length)
}

// AddPartCount accumulates a discrete part count into the count pivot.
func (a *Aggregator) AddPartCount(key Key, column string, count float64) {
	a.Counts.Add(key, column, count)
}

// Exclude records an exclusion.
func (a *Aggregator) Exclude(e Exclusion) {
	a.exclusions = append(a.exclusions, e)
}

// Exclusions returns the recorded exclusions in insertion order.
func (a *Aggregator) Exclusions() []Exclusion {
	out := make([]Exclusion, len(a.exclusions))
	copy(out, a.exclusions)
	return out
}
