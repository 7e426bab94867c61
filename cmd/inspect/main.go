package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/logging"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to plan_session.db")
	last := flag.Int("last", 20, "show N most recent versions")
	version := flag.String("version", "", "show single version detail")
	merges := flag.Bool("merges", false, "show the merge decision log instead of versions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/plan_session.db [--last N] [--version id] [--merges] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *merges:
		err = runMergesMode(st, *last, *jsonOut)
	case *version != "":
		err = runDetailMode(st, *version)
	default:
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID string `json:"version_id"`
	ParentID  string `json:"parent_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Goals     int    `json:"goals"`
	CreatedAt string `json:"created_at"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	records, err := st.History(last)
	if err != nil {
		return err
	}

	rows := make([]listRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, listRow{
			VersionID: rec.VersionID,
			ParentID:  rec.ParentID,
			Name:      rec.Config.Name,
			Goals:     len(rec.Config.Goals),
			CreatedAt: rec.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Printf("%-36s  %-36s  %-20s  %5s  %s\n", "VERSION", "PARENT", "NAME", "GOALS", "CREATED")
	fmt.Println(strings.Repeat("-", 120))
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%-36s  %-36s  %-20s  %5d  %s\n", r.VersionID, r.ParentID, name, r.Goals, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(st *store.Store, versionID string) error {
	rec, err := st.Get(versionID)
	if err != nil {
		return err
	}
	out := struct {
		VersionID string      `json:"version_id"`
		ParentID  string      `json:"parent_id,omitempty"`
		CreatedAt string      `json:"created_at"`
		Config    interface{} `json:"config"`
	}{rec.VersionID, rec.ParentID, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Config}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// #endregion detail-mode

// #region merges-mode

func runMergesMode(st *store.Store, last int, jsonOut bool) error {
	entries, err := logging.ListMerges(st.DB(), last)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	fmt.Printf("%-36s  %-10s  %-16s  %-10s  %s\n", "VERSION", "TRIGGER", "GROUP", "DECISION", "REASON")
	fmt.Println(strings.Repeat("-", 100))
	for _, e := range entries {
		fmt.Printf("%-36s  %-10s  %-16s  %-10s  %s\n", e.VersionID, e.TriggerType, e.Group, e.Decision, e.Reason)
	}
	return nil
}

// #endregion merges-mode
