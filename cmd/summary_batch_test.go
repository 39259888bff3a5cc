package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSummaryBatch_WritesReportsWithCollisionSuffix(t *testing.T) {
	home, _ := setupHome(t)

	// Two cohorts with the same basename in different directories
	d1 := filepath.Join(home, "site1")
	d2 := filepath.Join(home, "site2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(d, "cohort.csv"), []byte(cohort), 0o644); err != nil {
			t.Fatalf("write cohort: %v", err)
		}
	}
	outDir := filepath.Join(home, "reports")
	out := runCmd(t, "summary-batch", filepath.Join(home, "site*", "cohort.csv"), "--out-dir", outDir)
	if !strings.Contains(out, "[1/2] Processing cohort.csv") || !strings.Contains(out, "[2/2] Processing cohort.csv") {
		t.Fatalf("missing progress lines: %s", out)
	}

	b1 := filepath.Join(outDir, "cohort.summary.md")
	b2 := filepath.Join(outDir, "cohort__2.summary.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing report %s: %v", p, err)
		}
		if !strings.Contains(string(body), "Total Patients: 4") {
			t.Fatalf("unexpected report %s:\n%s", p, body)
		}
	}
}

func TestSummaryBatch_NoMatches(t *testing.T) {
	home, _ := setupHome(t)
	if _, err := execCmd("summary-batch", filepath.Join(home, "missing*.csv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}
