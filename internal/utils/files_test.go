package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "summary.md")
	if err := SafeWriteFile(p, []byte("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "new" {
		t.Fatalf("unexpected content %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestEncode(t *testing.T) {
	v := map[string]any{"total": 10, "name": "clinical_data.csv"}
	j, err := Encode("json", v)
	if err != nil || !strings.Contains(string(j), `"total": 10`) {
		t.Fatalf("json: %s %v", j, err)
	}
	y, err := Encode("YAML", v)
	if err != nil || !strings.Contains(string(y), "name: clinical_data.csv") {
		t.Fatalf("yaml: %s %v", y, err)
	}
	if _, err := Encode("xml", v); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
