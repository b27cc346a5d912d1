package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/linkage-engine/internal/config"
	"github.com/cxd309/linkage-engine/internal/kinematics"
	"github.com/cxd309/linkage-engine/internal/session"
)

func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrFloat64(v float64) *float64 { return &v }

func run(t *testing.T, input ScriptInput) RunLog {
	t.Helper()
	r, err := NewRunner(input)
	require.NoError(t, err)
	log, err := r.Run()
	require.NoError(t, err)
	return log
}

func TestRun_TicksAtFramerate(t *testing.T) {
	log := run(t, ScriptInput{
		Meta:   RunMeta{SessionID: "fixed", RunTime: 1},
		Config: &config.Config{Framerate: ptrInt(10)},
	})

	assert.Equal(t, "fixed", log.Meta.SessionID)
	require.Len(t, log.Output, 10)
	for i, row := range log.Output {
		assert.Equal(t, session.EventTick, row.Event)
		assert.InDelta(t, float64(i+1)/10, row.Timestamp, 1e-9)
		assert.InDelta(t, float64(i+1)/30, row.Progress, 1e-9)
		require.NotNil(t, row.Pose)
	}
	assert.Len(t, log.Path, config.DefaultResolution)
	assert.Equal(t, kinematics.Linkage{OA: 1, AB: 1, AMPerAB: 0.5}, log.Linkage)
	assert.Equal(t, 10, log.Meta.Framerate)
}

func TestRun_MetaFramerateOverridesConfig(t *testing.T) {
	cfg := &config.Config{Framerate: ptrInt(10)}
	log := run(t, ScriptInput{
		Meta:   RunMeta{RunTime: 1, Framerate: 4},
		Config: cfg,
	})

	assert.Equal(t, 4, log.Meta.Framerate)
	require.Len(t, log.Output, 4)
	assert.InDelta(t, 0.25, log.Output[0].Timestamp, 1e-9)
	assert.Equal(t, 10, *cfg.Framerate, "caller config is not modified")

	log = run(t, ScriptInput{Meta: RunMeta{RunTime: 0}})
	assert.Equal(t, config.DefaultFramerate, log.Meta.Framerate)

	_, err := NewRunner(ScriptInput{Meta: RunMeta{RunTime: 1, Framerate: -1}})
	assert.ErrorContains(t, err, "framerate")
}

func TestRun_GeneratesSessionID(t *testing.T) {
	log := run(t, ScriptInput{Meta: RunMeta{RunTime: 0}})
	_, err := uuid.Parse(log.Meta.SessionID)
	assert.NoError(t, err)
	assert.Empty(t, log.Output)
}

func TestRun_ZeroPeriodFreezes(t *testing.T) {
	log := run(t, ScriptInput{
		Meta:   RunMeta{RunTime: 0.5},
		Config: &config.Config{Framerate: ptrInt(20), Period: ptrString("0s")},
		Events: []session.Event{{Kind: session.EventProgress, Value: 0.4}},
	})

	require.NotEmpty(t, log.Output)
	for _, row := range log.Output {
		assert.Equal(t, 0.4, row.Progress)
	}
}

func TestRun_EventsInterleaveWithTicks(t *testing.T) {
	log := run(t, ScriptInput{
		Meta:   RunMeta{RunTime: 2},
		Config: &config.Config{Framerate: ptrInt(4), Period: ptrString("2s"), TracePath: ptrBool(true)},
		Events: []session.Event{
			// Out of order on purpose; the runner sorts by time.
			{Kind: session.EventAutorun, At: 1.5, Flag: true},
			{Kind: session.EventAutorun, At: 0.5, Flag: false},
			{Kind: session.EventProgress, At: 0.5, Value: 0.9},
			{Kind: session.EventOA, At: 1, Text: "half"},
		},
	})

	var kinds []session.EventKind
	for _, row := range log.Output {
		kinds = append(kinds, row.Event)
	}
	assert.Equal(t, []session.EventKind{
		session.EventTick,     // 0.25
		session.EventAutorun,  // 0.5, before the tick at 0.5
		session.EventProgress, // 0.5, same time, kept in arrival order
		session.EventOA,       // 1.0, no ticks while stopped
		session.EventAutorun,  // 1.5
		session.EventTick,     // 1.5, autorun is back on for this instant
		session.EventTick,     // 1.75
		session.EventTick,     // 2.0
	}, kinds)

	assert.InDelta(t, 0.125, log.Output[0].Progress, 1e-9)
	assert.Equal(t, 62, log.Output[0].Traced)
	assert.Equal(t, 0.9, log.Output[2].Progress)
	assert.Equal(t, []string{"oa"}, log.Output[3].Invalid)
	assert.Equal(t, 1.0, log.Linkage.OA, "rejected text leaves OA unchanged")
	// Autorun resumed at 1.5: two quarter-second ticks of a 2s period.
	assert.InDelta(t, 0.9, log.Output[5].Progress, 1e-9)
	assert.InDelta(t, 0.15, log.Output[7].Progress, 1e-9)
}

func TestRun_EventsAfterLastTick(t *testing.T) {
	log := run(t, ScriptInput{
		Meta:   RunMeta{RunTime: 1.1},
		Config: &config.Config{Framerate: ptrInt(2), Autorun: ptrBool(false)},
		Events: []session.Event{
			{Kind: session.EventAMPerAB, At: 1.05, Value: 0.2},
			{Kind: session.EventAMPerAB, At: 1.2, Value: 0.7},
		},
	})

	require.Len(t, log.Output, 1)
	assert.Equal(t, 0.2, log.Linkage.AMPerAB)
}

func TestRun_DegenerateLinkage(t *testing.T) {
	log := run(t, ScriptInput{
		Meta:   RunMeta{RunTime: 0},
		Config: &config.Config{OA: ptrFloat64(1), AB: ptrFloat64(1)},
		Events: []session.Event{
			{Kind: session.EventOA, Text: "0"},
			{Kind: session.EventAB, Text: "0"},
		},
	})

	require.Len(t, log.Output, 2)
	assert.NotNil(t, log.Output[0].Pose)
	assert.Nil(t, log.Output[1].Pose)
	assert.Contains(t, log.Output[1].Degenerate, "zero length")
	require.Len(t, log.Path, config.DefaultResolution)
	for _, pt := range log.Path {
		assert.Nil(t, pt)
	}

	_, err := json.Marshal(log)
	assert.NoError(t, err)
}

func TestRun_PathKeepsSolvedSamples(t *testing.T) {
	log := run(t, ScriptInput{
		Meta:   RunMeta{RunTime: 0},
		Config: &config.Config{OA: ptrFloat64(0.3), AB: ptrFloat64(0.7)},
	})

	// Only the first sample rounds to a NaN A.y.
	require.Len(t, log.Path, config.DefaultResolution)
	assert.Nil(t, log.Path[0])
	want := kinematics.Tabulate(log.Linkage, config.DefaultResolution)
	for i := 1; i < len(log.Path); i++ {
		require.NotNil(t, log.Path[i], "sample %d", i)
		assert.Equal(t, want[i], *log.Path[i])
	}

	out, err := json.Marshal(log)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"path":[null,{`)
}

func TestNewRunner_Errors(t *testing.T) {
	_, err := NewRunner(ScriptInput{Meta: RunMeta{RunTime: -1}})
	assert.ErrorContains(t, err, "run_time")

	_, err = NewRunner(ScriptInput{Meta: RunMeta{RunTime: 1e9}})
	assert.ErrorContains(t, err, "run_time")

	_, err = NewRunner(ScriptInput{
		Meta:   RunMeta{RunTime: 1},
		Events: []session.Event{{Kind: session.EventTick, At: -2}},
	})
	assert.ErrorContains(t, err, "invalid time")

	_, err = NewRunner(ScriptInput{
		Meta:   RunMeta{RunTime: 1},
		Config: &config.Config{Resolution: ptrInt(-1)},
	})
	assert.ErrorContains(t, err, "building session")
}

func TestRun_ProgressAboveOneIsClamped(t *testing.T) {
	r, err := NewRunner(ScriptInput{
		Meta:   RunMeta{RunTime: 1},
		Events: []session.Event{{Kind: session.EventProgress, At: 0.5, Value: 2}},
	})
	require.NoError(t, err)
	_, err = r.Run()
	assert.NoError(t, err, "progress above 1 is clamped, not rejected")
}

func TestRunJSON(t *testing.T) {
	out, err := RunJSON(`{
		"run_meta": {"session_id": "demo", "run_time": 0.5},
		"config": {"oa": 0.5, "ab": 1.5, "framerate": 4, "trace_path": true},
		"events": [{"kind": "am_per_ab", "at": 0.25, "value": 0.3}]
	}`)
	require.NoError(t, err)

	var log RunLog
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	assert.Equal(t, "demo", log.Meta.SessionID)
	assert.Equal(t, kinematics.Linkage{OA: 0.5, AB: 1.5, AMPerAB: 0.3}, log.Linkage)
	require.Len(t, log.Output, 3)
	assert.Equal(t, session.EventAMPerAB, log.Output[0].Event)
	assert.Equal(t, session.EventTick, log.Output[1].Event)
}

func TestRunJSON_Errors(t *testing.T) {
	_, err := RunJSON(`{`)
	assert.ErrorContains(t, err, "invalid input JSON")

	_, err = RunJSON(`{"run_meta": {"run_time": 1}, "events": [{"kind": "jump"}]}`)
	assert.ErrorContains(t, err, "unknown event kind")

	_, err = RunJSON(`{"run_meta": {"run_time": 1}, "config": {"oa": -1}}`)
	assert.ErrorIs(t, err, kinematics.ErrNegativeLength)
}
