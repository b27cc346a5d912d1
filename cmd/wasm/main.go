//go:build js && wasm

// Command wasm exposes the linkage engine to the browser via WebAssembly.
// After loading, it registers global JavaScript functions:
//
//	runSimulation(jsonString) -> jsonString
//	solvePose(oa, ab, amPerAB, progress) -> {a: {x, y}, b: {x, y}, m: {x, y}}
//	tabulatePath(oa, ab, amPerAB, resolution) -> [{x, y}, ...]
//
// runSimulation takes a JSON-encoded ScriptInput and returns the RunLog, the
// same contract as the CLI. The other two let a canvas renderer draw frames
// without a round trip through JSON.
package main

import (
	"syscall/js"

	"github.com/cxd309/linkage-engine/internal/engine"
	"github.com/cxd309/linkage-engine/internal/kinematics"
)

func main() {
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	js.Global().Set("solvePose", js.FuncOf(solvePose))
	js.Global().Set("tabulatePath", js.FuncOf(tabulatePath))
	select {} // keep the WASM module alive until the page is closed
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := engine.RunJSON(args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}

func linkageArgs(args []js.Value) (kinematics.Linkage, bool) {
	if len(args) < 4 {
		return kinematics.Linkage{}, false
	}
	return kinematics.Linkage{OA: args[0].Float(), AB: args[1].Float(), AMPerAB: args[2].Float()}, true
}

func point(p kinematics.Point) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y}
}

func solvePose(_ js.Value, args []js.Value) any {
	l, ok := linkageArgs(args)
	if !ok {
		return map[string]any{"error": "expected oa, ab, amPerAB, progress"}
	}
	pose := l.Solve(args[3].Float())
	return map[string]any{"a": point(pose.A), "b": point(pose.B), "m": point(pose.M), "finite": pose.Finite()}
}

func tabulatePath(_ js.Value, args []js.Value) any {
	l, ok := linkageArgs(args)
	if !ok {
		return map[string]any{"error": "expected oa, ab, amPerAB, resolution"}
	}
	path := kinematics.Tabulate(l, args[3].Int())
	out := make([]any, len(path))
	for i, p := range path {
		out[i] = point(p)
	}
	return out
}
