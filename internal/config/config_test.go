package config

import (
	"strings"
	"testing"
)

const minimalYAML = `
auth:
  jwt_secret: test-secret
  staff:
    - username: doc_01
      password: pass123
      name: Dr. Smith
      role: Doctor
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Database.Backend != BackendSQLite {
		t.Errorf("backend = %q, want sqlite", cfg.Database.Backend)
	}
	if cfg.Database.Path != "bedboard.db" {
		t.Errorf("path = %q, want bedboard.db", cfg.Database.Path)
	}
	if cfg.Auth.TokenTTLHours != 8 {
		t.Errorf("token ttl = %d, want 8", cfg.Auth.TokenTTLHours)
	}
	if cfg.Housekeeping.Schedule != "*/5 * * * *" {
		t.Errorf("schedule = %q, want */5 * * * *", cfg.Housekeeping.Schedule)
	}
	if cfg.Housekeeping.TurnoverMinutes != 30 {
		t.Errorf("turnover = %d, want 30", cfg.Housekeeping.TurnoverMinutes)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %q/%q, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestParse_DefaultWardComplement(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(cfg.Wards) != 4 {
		t.Fatalf("wards = %d, want 4", len(cfg.Wards))
	}
	total := 0
	for _, w := range cfg.Wards {
		total += w.Beds
	}
	if total != 50 {
		t.Errorf("total seeded beds = %d, want 50", total)
	}
	if cfg.Wards[0].Name != "ICU" || cfg.Wards[0].BedType != "Critical" || cfg.Wards[0].MaxDistance != 10 {
		t.Errorf("ICU ward = %+v, want Critical beds within distance 10", cfg.Wards[0])
	}
}

func TestParse_WardTypeDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
wards:
  - name: ICU
    beds: 4
  - name: General
    beds: 6
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Wards[0].BedType != "Critical" {
		t.Errorf("ICU bed type = %q, want Critical", cfg.Wards[0].BedType)
	}
	if cfg.Wards[1].BedType != "Standard" {
		t.Errorf("General bed type = %q, want Standard", cfg.Wards[1].BedType)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"missing jwt secret",
			"server:\n  port: 8080\n",
			"jwt_secret",
		},
		{
			"duplicate staff username",
			minimalYAML + "    - username: doc_01\n      password: x\n",
			"duplicated",
		},
		{
			"staff without password",
			"auth:\n  jwt_secret: s\n  staff:\n    - username: doc_01\n",
			"password is required",
		},
		{
			"bad backend",
			minimalYAML + "database:\n  backend: postgres\n",
			"sqlite or mysql",
		},
		{
			"unnamed ward",
			minimalYAML + "wards:\n  - beds: 3\n",
			"name is required",
		},
		{
			"bad alert platform",
			minimalYAML + "alerts:\n  platform: pager\n  channel: C1\n",
			"slack or discord",
		},
		{
			"alert platform without channel",
			minimalYAML + "alerts:\n  platform: slack\n",
			"channel is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParse_EnvSecretOverride(t *testing.T) {
	t.Setenv("BEDBOARD_JWT_SECRET", "from-env")
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("jwt secret = %q, want env override", cfg.Auth.JWTSecret)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("::not yaml")); err == nil {
		t.Fatal("Parse() succeeded on garbage input")
	}
}
