package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderFormats(t *testing.T) {
	v := map[string]int{"rows": 2}
	md := func() string { return "# report" }

	if b, err := render("", v, md); err != nil || string(b) != "# report" {
		t.Fatalf("md: %q %v", b, err)
	}
	if b, err := render("YAML", v, md); err != nil || string(b) != "rows: 2\n" {
		t.Fatalf("yaml: %q %v", b, err)
	}
	if b, err := render("json", v, nil); err != nil || !strings.Contains(string(b), `"rows": 2`) {
		t.Fatalf("json: %q %v", b, err)
	}
	if _, err := render("md", v, nil); err == nil {
		t.Fatalf("md without a renderer should fail")
	}
	if _, err := render("xml", v, md); err == nil {
		t.Fatalf("unknown format should fail")
	}
}

func TestWriteOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	var buf bytes.Buffer
	err := writeOutput(nil, func() string { return "hello\n" }, outputOptions{OutputPath: path, Writer: &buf})
	if err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "hello\n" {
		t.Fatalf("file = %q, %v", b, err)
	}
	if !strings.Contains(buf.String(), "Wrote "+path) {
		t.Fatalf("missing confirmation: %q", buf.String())
	}
}

func TestReportPathAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	used := map[string]struct{}{}
	a := reportPath(dir, "/x/metrics.csv", "md", used)
	b := reportPath(dir, "/y/metrics.csv", "md", used)
	if filepath.Base(a) != "metrics.summary.md" || filepath.Base(b) != "metrics__2.summary.md" {
		t.Fatalf("got %s, %s", a, b)
	}
	if err := os.WriteFile(filepath.Join(dir, "sales.summary.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c := reportPath(dir, "sales.xlsx", "json", used); filepath.Base(c) != "sales__2.summary.json" {
		t.Fatalf("existing report overwritten: %s", c)
	}
}
