package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-takeoff/pkg/audit"
	"github.com/dd0wney/cluso-takeoff/pkg/encryption"
	"github.com/dd0wney/cluso-takeoff/pkg/identity"
	"github.com/dd0wney/cluso-takeoff/pkg/metrics"
	"github.com/dd0wney/cluso-takeoff/pkg/pivot"
	"github.com/dd0wney/cluso-takeoff/pkg/provider"
	"github.com/dd0wney/cluso-takeoff/pkg/scan"
)

// modelYAML is a small but complete plant network:
//
//	P-100 (STW 500) -- V-1 -- P-200 (ABW 200) -- T-1 -- P-300 (ABW 200) -- R-1 -- P-500 (CDE 100)
//	                                              |
//	                                            P-400 (STW 500)
//
// plus F-1, an unconnected fastener bundled with P-300, and P-900, an
// isolated pipe whose line has no install type.
const modelYAML = `
components:
  - id: P-100
    class: Pipe
    ports:
      - {name: p1, x: 0, y: 0, z: 0}
      - {name: p2, x: 3, y: 4, z: 0}
    properties:
      LineTag: "STW 500"
      MaterialCode: "ST37"
      NominalSize: "500"
      InstallType: "buried"
  - id: V-1
    class: Valve
    ports:
      - {name: p1, x: 3, y: 4, z: 0}
      - {name: p2, x: 3, y: 4, z: 4}
  - id: P-200
    class: Pipe
    ports:
      - {name: p1, x: 3, y: 4, z: 4}
      - {name: p2, x: 3, y: 4, z: 14}
    properties:
      LineTag: "ABW 200"
      MaterialCode: "PE"
      NominalSize: "200"
      InstallType: "exposed"
  - id: T-1
    class: Tee
    ports:
      - {name: run1, x: 3, y: 4, z: 14}
      - {name: run2, x: 3, y: 4, z: 24}
      - {name: branch, x: 3, y: 9, z: 19}
  - id: P-300
    class: Pipe
    ports:
      - {name: p1, x: 3, y: 4, z: 24}
      - {name: p2, x: 3, y: 4, z: 34}
    properties:
      LineTag: "ABW 200"
      MaterialCode: "PE"
      NominalSize: "200"
      InstallType: "exposed"
  - id: P-400
    class: Pipe
    ports:
      - {name: p1, x: 3, y: 9, z: 19}
      - {name: p2, x: 3, y: 19, z: 19}
    properties:
      LineTag: "STW 500"
      MaterialCode: "ST37"
      NominalSize: "500"
      InstallType: "buried"
  - id: R-1
    class: Reducer
    ports:
      - {name: p1, x: 3, y: 4, z: 34}
      - {name: p2, x: 3, y: 4, z: 35.5}
  - id: P-500
    class: Pipe
    ports:
      - {name: p1, x: 3, y: 4, z: 35.5}
      - {name: p2, x: 3, y: 4, z: 40.5}
    properties:
      LineTag: "CDE 100"
      MaterialCode: "PE"
      NominalSize: "100"
      InstallType: "exposed"
  - id: F-1
    class: Fastener
    ports:
      - {x: 50, y: 50, z: 0}
      - {x: 50, y: 50.5, z: 0}
    properties:
      MaterialCode: "PE"
      NominalSize: "200"
      InstallType: "exposed"
  - id: P-900
    class: Pipe
    ports:
      - {name: p1, x: 100, y: 0, z: 0}
      - {name: p2, x: 103, y: 4, z: 0}
    properties:
      LineTag: "ZZZ 10"
      MaterialCode: "ST37"
      NominalSize: "300"
connections:
  - from: {component: P-100, port: p2}
    to: {component: V-1, port: p1}
  - from: {component: V-1, port: p2}
    to: {component: P-200, port: p1}
  - from: {component: P-200, port: p2}
    to: {component: T-1, port: run1}
  - from: {component: T-1, port: run2}
    to: {component: P-300, port: p1}
  - from: {component: T-1, port: branch}
    to: {component: P-400, port: p1}
  - from: {component: P-300, port: p2}
    to: {component: R-1, port: p1}
  - from: {component: R-1, port: p2}
    to: {component: P-500, port: p1}
bundles:
  - [F-1, P-300]
`

// TestCompleteTakeoffWorkflow tests a full scan of a plant network from a
// YAML document through measurement, grouping, routing, identifier
// allocation and pivot aggregation, including re-run stability and
// gap-filling of freed identifiers.
func TestCompleteTakeoffWorkflow(t *testing.T) {
	t.Log("=== E2E Test: Complete Takeoff Workflow ===")

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.yaml")
	statePath := filepath.Join(dir, "takeoff.state")
	require.NoError(t, os.WriteFile(modelPath, []byte(modelYAML), 0644))

	// Step 1: Load the model document.
	t.Log("Step 1: Loading model document...")
	doc, err := provider.LoadDocument(modelPath)
	require.NoError(t, err)
	m, err := doc.Build()
	require.NoError(t, err)
	require.Len(t, m.ComponentIDs(), 10)
	t.Logf("✓ Built model with %d components", len(m.ComponentIDs()))

	// Step 2: Wire the engine with persistence, metrics and auditing.
	t.Log("Step 2: Wiring scan engine...")
	store := identity.NewStore(statePath)
	registry := metrics.NewRegistry()
	auditLog := audit.NewAuditLogger(100)

	engine := scan.NewEngine(m, store, nil)
	engine.SetMetrics(registry)
	engine.SetAudit(auditLog)

	// Step 3: First scan.
	t.Log("Step 3: Running first scan...")
	report, err := engine.Run(nil)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 10, report.Stats.Components)
	t.Logf("✓ Scan %s measured %d components", report.RunID, report.Stats.Components)

	// Step 4: Check measured lengths per billing row.
	t.Log("Step 4: Verifying pivoted lengths...")
	st37 := pivot.Key{BillableID: "001", Label: "ST37 DN500 buried", Unit: scan.UnitLength}
	pe200 := pivot.Key{BillableID: "002", Label: "PE DN200 exposed", Unit: scan.UnitLength}
	pe100 := pivot.Key{BillableID: "003", Label: "PE DN100 exposed", Unit: scan.UnitLength}

	straight := func(k pivot.Key) pivot.Key { k.Category = pivot.CategoryStraightLength; return k }
	valve := func(k pivot.Key) pivot.Key { k.Category = pivot.CategoryValve; return k }
	tee := func(k pivot.Key) pivot.Key { k.Category = pivot.CategoryTee; return k }
	reducer := func(k pivot.Key) pivot.Key { k.Category = pivot.CategoryReducer; return k }
	fastener := func(k pivot.Key) pivot.Key { k.Category = pivot.CategoryFastener; return k }

	lengths := report.Lengths
	require.NotNil(t, lengths)

	// P-100 is a 3-4-5 triangle hypotenuse, so its run is exactly 5.0.
	assert.InDelta(t, 15.0, lengths.Value(straight(st37), "STW 500"), 1e-9,
		"STW 500 straight runs: P-100 (5.0) + P-400 (10.0)")
	assert.InDelta(t, 20.0, lengths.Value(straight(pe200), "ABW 200"), 1e-9,
		"ABW 200 straight runs: P-200 + P-300")
	assert.InDelta(t, 5.0, lengths.Value(straight(pe100), "CDE 100"), 1e-9)

	// Untagged valve between two lines splits 50/50.
	assert.InDelta(t, 2.0, lengths.Value(valve(st37), "STW 500"), 1e-9)
	assert.InDelta(t, 2.0, lengths.Value(valve(pe200), "ABW 200"), 1e-9)

	// Tee run goes whole to the shared run-side line, branch to its own.
	assert.InDelta(t, 10.0, lengths.Value(tee(pe200), "ABW 200"), 1e-9)
	assert.InDelta(t, 5.0, lengths.Value(tee(st37), "STW 500"), 1e-9)

	// Reducer length lands entirely on the larger-diameter side.
	assert.InDelta(t, 1.5, lengths.Value(reducer(pe200), "ABW 200"), 1e-9)
	assert.InDelta(t, 0.0, lengths.Value(reducer(pe100), "CDE 100"), 1e-9)

	// F-1 has no resolvable line, so it lands on its synthetic
	// material/ND/install row under the blank column.
	assert.InDelta(t, 0.5, lengths.Value(fastener(pe200), pivot.BlankColumn), 1e-9)
	t.Log("✓ Lengths routed and pivoted as expected")

	// Step 5: Aggregation round trip. Every row's data columns must sum to
	// its total column.
	t.Log("Step 5: Verifying row totals...")
	for _, key := range lengths.Rows() {
		row := lengths.Row(key)
		var sum float64
		for col, v := range row {
			if col != pivot.TotalColumn {
				sum += v
			}
		}
		assert.InDelta(t, row[pivot.TotalColumn], sum, 1e-9, "row %v", key)
	}
	t.Logf("✓ %d length rows balance against their totals", lengths.Len())

	// Step 6: Discrete part counts.
	t.Log("Step 6: Verifying part counts...")
	counts := report.Counts
	require.NotNil(t, counts)
	assert.Equal(t, 4, counts.Len(), "valve, tee, reducer and fastener each count once")
	for _, key := range counts.Rows() {
		assert.Equal(t, scan.UnitCount, key.Unit)
		assert.InDelta(t, 1.0, counts.Row(key)[pivot.TotalColumn], 1e-9, "row %v", key)
	}
	t.Log("✓ Each discrete part counted exactly once")

	// Step 7: Connectivity groups. The bundle pulls the unconnected
	// fastener into the main island; only P-900 stands alone.
	t.Log("Step 7: Verifying connectivity groups...")
	assert.Equal(t, report.Groups["P-100"], report.Groups["F-1"], "bundle joins F-1 to the main island")
	assert.Equal(t, report.Groups["P-100"], report.Groups["P-500"])
	assert.NotEqual(t, report.Groups["P-100"], report.Groups["P-900"])
	distinct := make(map[string]bool)
	for _, label := range report.Groups {
		distinct[label] = true
	}
	assert.Len(t, distinct, 2)
	t.Logf("✓ Found %d connectivity islands", len(distinct))

	// Step 8: Exclusions. F-1 is recorded even though its fallback row
	// succeeded; P-900 has no install type and no fallback.
	t.Log("Step 8: Verifying exclusions...")
	require.Len(t, report.Exclusions, 2)
	assert.Equal(t, "F-1", string(report.Exclusions[0].Component))
	assert.Equal(t, pivot.ReasonMissingLineTag, report.Exclusions[0].Reason)
	assert.Equal(t, "P-900", string(report.Exclusions[1].Component))
	assert.Equal(t, pivot.ReasonMissingInstallType, report.Exclusions[1].Reason)

	excludeEvents := auditLog.GetEvents(&audit.Filter{Action: audit.ActionExclude})
	assert.Len(t, excludeEvents, 2, "each exclusion leaves an audit event")
	scanEvents := auditLog.GetEvents(&audit.Filter{Action: audit.ActionScan})
	assert.Len(t, scanEvents, 1)
	assert.Equal(t, audit.StatusSuccess, scanEvents[0].Status)
	t.Log("✓ Exclusions reported and audited")

	// Step 9: Re-run stability. A second scan over the same model must
	// reproduce the identical pivot, identifiers included.
	t.Log("Step 9: Re-running scan for identifier stability...")
	second, err := engine.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, lengths.Rows(), second.Lengths.Rows())
	for _, key := range lengths.Rows() {
		assert.Equal(t, lengths.Row(key), second.Lengths.Row(key), "row %v", key)
	}
	t.Log("✓ Second run reproduced identical rows and identifiers")

	// Step 10: Gap filling. Free the PE DN200 identifier by hand, re-run,
	// and the freed slot is reused so the row keeps its number.
	t.Log("Step 10: Freeing an identifier and verifying gap reuse...")
	state, err := store.Load()
	require.NoError(t, err)
	alloc := identity.NewAllocator(state)
	id, ok := alloc.Lookup("PE DN200 exposed")
	require.True(t, ok)
	require.Equal(t, 2, id)
	alloc.Remove("PE DN200 exposed")
	require.NoError(t, store.Save(alloc.State()))

	third, err := engine.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, lengths.Rows(), third.Lengths.Rows(),
		"freed identifier slot is reused, not renumbered")
	t.Log("✓ Freed identifier slot reused on the next run")

	t.Log("=== E2E Test Complete ===")
}

// TestTakeoffWorkflow_EncryptedStateRoundTrip tests that a scan persists and
// reloads identifier state through an encrypted store.
func TestTakeoffWorkflow_EncryptedStateRoundTrip(t *testing.T) {
	t.Log("=== E2E Test: Encrypted State Round Trip ===")

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.yaml")
	statePath := filepath.Join(dir, "takeoff.state")
	require.NoError(t, os.WriteFile(modelPath, []byte(modelYAML), 0644))

	doc, err := provider.LoadDocument(modelPath)
	require.NoError(t, err)
	m, err := doc.Build()
	require.NoError(t, err)

	salt := []byte("e2e-fixed-salt16")
	require.Len(t, salt, encryption.SaltSize)
	enc, err := encryption.NewEngineFromPassphrase("correct horse battery staple", salt)
	require.NoError(t, err)

	engine := scan.NewEngine(m, identity.NewEncryptedStore(statePath, enc), nil)
	first, err := engine.Run(nil)
	require.NoError(t, err)

	// The state file on disk is ciphertext, not the JSON snapshot.
	raw, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "PE DN200 exposed")

	// A fresh engine over the persisted state sees the same assignments.
	enc2, err := encryption.NewEngineFromPassphrase("correct horse battery staple", salt)
	require.NoError(t, err)
	reload := scan.NewEngine(m, identity.NewEncryptedStore(statePath, enc2), nil)
	second, err := reload.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, first.Lengths.Rows(), second.Lengths.Rows())
	t.Log("✓ Encrypted identifier state survived an engine restart")
}
