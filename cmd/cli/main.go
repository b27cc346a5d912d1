// Command linkage reads a ScriptInput JSON from a file argument (or stdin),
// runs the scripted session, and writes the RunLog JSON to stdout.
//
// With -live it instead animates the configured linkage in real time for the
// given duration, logging the mechanism state once per second.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/cxd309/linkage-engine/internal/config"
	"github.com/cxd309/linkage-engine/internal/engine"
	"github.com/cxd309/linkage-engine/internal/monitoring"
	"github.com/cxd309/linkage-engine/internal/render"
	"github.com/cxd309/linkage-engine/internal/session"
	"github.com/cxd309/linkage-engine/internal/store"
	"github.com/cxd309/linkage-engine/internal/timeutil"
)

func main() {
	plotPath := flag.String("plot", "", "render the final frame to this image (png, svg, pdf)")
	dbPath := flag.String("db", "", "store the run log in this SQLite database")
	configPath := flag.String("config", "", "session configuration JSON, used by -live")
	live := flag.Duration("live", 0, "animate in real time for this long instead of running a script")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if *live > 0 {
		err = runLive(ctx, *configPath, *live, *plotPath)
	} else {
		err = runScript(ctx, flag.Arg(0), *plotPath, *dbPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "linkage: %v\n", err)
		os.Exit(1)
	}
}

func runScript(ctx context.Context, inputPath, plotPath, dbPath string) error {
	var (
		data []byte
		err  error
	)
	if inputPath != "" {
		data, err = os.ReadFile(inputPath)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var input engine.ScriptInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("invalid input JSON: %w", err)
	}
	runner, err := engine.NewRunner(input)
	if err != nil {
		return err
	}
	runLog, err := runner.Run()
	if err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}

	if plotPath != "" {
		if err := render.Save(runner.Session().Frame(), plotPath, 0); err != nil {
			return err
		}
	}
	if dbPath != "" {
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := db.SaveRun(ctx, runLog); err != nil {
			return fmt.Errorf("storing run %s: %w", runLog.Meta.SessionID, err)
		}
		monitoring.Logf("stored run %s (%d frames) in %s", runLog.Meta.SessionID, len(runLog.Output), dbPath)
	}

	out, err := json.Marshal(runLog)
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runLive(ctx context.Context, configPath string, d time.Duration, plotPath string) error {
	var cfg *config.Config
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	clock := timeutil.RealClock{}
	s, err := session.New(cfg, clock.Now())
	if err != nil {
		return err
	}
	loop := engine.NewLoop(s, clock, cfg.FrameInterval())

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	report := clock.NewTicker(time.Second)
	defer report.Stop()
	for {
		select {
		case <-report.C():
			f, err := loop.Snapshot(ctx)
			if err != nil {
				continue
			}
			monitoring.Logf("progress=%.3f A=(%.3f, %.3f) B=(%.3f, %.3f) M=(%.3f, %.3f)",
				f.Progress, f.Pose.A.X, f.Pose.A.Y, f.Pose.B.X, f.Pose.B.Y, f.Pose.M.X, f.Pose.M.Y)
		case <-done:
			if plotPath == "" {
				return nil
			}
			// The loop has exited, so the session is no longer shared.
			return render.Save(s.Frame(), plotPath, 0)
		}
	}
}
