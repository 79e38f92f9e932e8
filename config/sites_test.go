package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSites(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sites file: %v", err)
	}
	return path
}

func TestLoadSites(t *testing.T) {
	path := writeSites(t, `
sites:
  - name: korzo
    url: https://example-korzo.sk/menu
    enabled: true
    wait_selector: ".menu"
    timeout_ms: 60000
    consent_steps:
      - type: click
        selector: "#accept"
      - type: wait
        milliseconds: 500
      - type: scroll
        pixels: 300
  - name: zaba
    url: https://example-zaba.sk/
    enabled: false
`)

	sites, err := LoadSites(path)
	if err != nil {
		t.Fatalf("LoadSites failed: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("loaded %d sites, want 2", len(sites))
	}

	korzo := sites[0]
	if korzo.Name != "korzo" || !korzo.Enabled {
		t.Errorf("first site = %+v, want enabled korzo", korzo)
	}
	if korzo.WaitSelector != ".menu" {
		t.Errorf("wait selector = %q, want .menu", korzo.WaitSelector)
	}
	if got := korzo.Timeout(); got != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", got)
	}
	if len(korzo.ConsentSteps) != 3 {
		t.Fatalf("consent steps = %d, want 3", len(korzo.ConsentSteps))
	}
	if korzo.ConsentSteps[0].Type != "click" || korzo.ConsentSteps[0].Selector != "#accept" {
		t.Errorf("first consent step = %+v", korzo.ConsentSteps[0])
	}

	if sites[1].Enabled {
		t.Error("second site should be disabled")
	}
	if got := sites[1].Timeout(); got != 45*time.Second {
		t.Errorf("default timeout = %v, want 45s", got)
	}
}

func TestLoadSitesValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "sites:\n  - url: https://a.sk\n",
			wantErr: "missing name",
		},
		{
			name:    "missing url",
			yaml:    "sites:\n  - name: a\n",
			wantErr: "missing url",
		},
		{
			name:    "duplicate names",
			yaml:    "sites:\n  - name: a\n    url: https://a.sk\n  - name: a\n    url: https://b.sk\n",
			wantErr: "duplicate name",
		},
		{
			name:    "empty list",
			yaml:    "sites: []\n",
			wantErr: "no sites",
		},
		{
			name:    "unknown consent step type",
			yaml:    "sites:\n  - name: a\n    url: https://a.sk\n    consent_steps:\n      - type: eval\n",
			wantErr: "unknown type",
		},
		{
			name:    "click without selector",
			yaml:    "sites:\n  - name: a\n    url: https://a.sk\n    consent_steps:\n      - type: click\n",
			wantErr: "click requires a selector",
		},
		{
			name:    "wait without selector or duration",
			yaml:    "sites:\n  - name: a\n    url: https://a.sk\n    consent_steps:\n      - type: wait\n",
			wantErr: "wait requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSites(t, tt.yaml)
			_, err := LoadSites(path)
			if err == nil {
				t.Fatal("LoadSites succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSitesMissingFile(t *testing.T) {
	if _, err := LoadSites(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadSites on a missing file succeeded, want error")
	}
}
