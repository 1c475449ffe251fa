package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	analytics "msb-report/internal/analytics/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: MSB 1
    file: msb1.csv
    date_column: Date
    time_column: Time
    power_column: PSum
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MergeMode != analytics.MergeUnion {
		t.Fatalf("merge mode = %q, want union", cfg.MergeMode)
	}
	if cfg.Mode != analytics.ModeAuto {
		t.Fatalf("aggregation mode = %q, want auto", cfg.Mode)
	}
	if cfg.SignConvention != SignNegate {
		t.Fatalf("sign convention = %q, want negate", cfg.SignConvention)
	}
	if !cfg.Sources[0].Descriptor.Negate {
		t.Fatalf("default convention must stamp negate onto the descriptor")
	}
}

func TestLoadColumnRefForms(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: MSB 1
    file: msb1.csv
    header_offset: 2
    date_column: 0
    time_column: Time
    power_column:
      letter: BI
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	desc := cfg.Sources[0].Descriptor
	if desc.DateColumn.Index == nil || *desc.DateColumn.Index != 0 {
		t.Fatalf("scalar integer must become an index ref: %+v", desc.DateColumn)
	}
	if desc.TimeColumn == nil || len(desc.TimeColumn.Aliases) != 1 || desc.TimeColumn.Aliases[0] != "Time" {
		t.Fatalf("scalar string must become a name ref: %+v", desc.TimeColumn)
	}
	if desc.PowerColumn.Letter != "BI" {
		t.Fatalf("letter ref = %+v", desc.PowerColumn)
	}
}

func TestLoadSignOverride(t *testing.T) {
	path := writeConfig(t, `
sign_convention: negate
sources:
  - name: MSB 1
    file: msb1.csv
    date_column: Date
    time_column: Time
    power_column: PSum
  - name: MSB 2
    file: msb2.csv
    date_column: Date
    time_column: Time
    power_column: PSum
    negate: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Sources[0].Descriptor.Negate {
		t.Fatalf("MSB 1 must follow the global convention")
	}
	if cfg.Sources[1].Descriptor.Negate {
		t.Fatalf("MSB 2 must honor its per-source override")
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"no sources": `
merge_mode: union
`,
		"duplicate names": `
sources:
  - name: MSB 1
    date_column: Date
    time_column: Time
    power_column: PSum
  - name: MSB 1
    date_column: Date
    time_column: Time
    power_column: PSum
`,
		"invalid merge mode": `
merge_mode: outer
sources:
  - name: MSB 1
    date_column: Date
    time_column: Time
    power_column: PSum
`,
		"invalid sign convention": `
sign_convention: flip
sources:
  - name: MSB 1
    date_column: Date
    time_column: Time
    power_column: PSum
`,
		"descriptor without power column": `
sources:
  - name: MSB 1
    date_column: Date
`,
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want not-exist", err)
	}
}
