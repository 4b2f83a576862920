package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/parcelarea/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("parcelarea-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Survey.ClosureToleranceM != 0.05 {
		t.Errorf("expected tolerance 0.05, got %g", cfg.Survey.ClosureToleranceM)
	}
	if cfg.Telemetry.ServiceName != "parcelarea-test" {
		t.Errorf("expected service name parcelarea-test, got %s", cfg.Telemetry.ServiceName)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected cors origins: %v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PARCELAREA_SURVEY_CLOSURE_TOLERANCE_M", "0.2")
	t.Setenv("PARCELAREA_SERVER_PORT", "9090")

	cfg, err := config.Load("parcelarea-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Survey.ClosureToleranceM != 0.2 {
		t.Errorf("expected tolerance 0.2, got %g", cfg.Survey.ClosureToleranceM)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 0},
		Survey: config.SurveyConfig{ClosureToleranceM: -1},
		Render: config.RenderConfig{Width: 10, Height: 10},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "closure_tolerance_m", "render size", "temporal.task_queue"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got: %v", want, err)
		}
	}
}
