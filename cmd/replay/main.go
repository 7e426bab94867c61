package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--json]")
		os.Exit(2)
	}

	f, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	results, summary := replay.Run(f, time.Now().UTC())

	if *jsonOut {
		out := struct {
			Description string             `json:"description"`
			Results     []replay.StepResult `json:"results"`
			Summary     replay.Summary      `json:"summary"`
		}{f.Description, results, summary}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
	} else {
		printText(f, results, summary)
	}

	if summary.Violations > 0 {
		os.Exit(1)
	}
}

// #endregion main

// #region text-output

func printText(f *replay.Fixture, results []replay.StepResult, summary replay.Summary) {
	if f.Description != "" {
		fmt.Printf("Fixture: %s\n", f.Description)
	}
	for _, r := range results {
		status := "ok"
		if len(r.Violations) > 0 {
			status = "VIOLATION"
		}
		fmt.Printf("step %2d  %-12s %s\n", r.Index, r.Kind, status)
		for _, d := range r.Decisions {
			fmt.Printf("         %-16s %s\n", d.Group, d.Reason)
		}
		for _, v := range r.Violations {
			fmt.Printf("         ! %s\n", v)
		}
	}
	fmt.Printf("\n%d steps, %d violations\n", summary.TotalSteps, summary.Violations)
}

// #endregion text-output
