package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/worker"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newViper() *viper.Viper {
	v := viper.New()
	configureViper(v)
	return v
}

func mustLoad(t *testing.T, v *viper.Viper) *model.Config {
	t.Helper()
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	return cfg
}

func readFileConfig(t *testing.T, path string) *viper.Viper {
	t.Helper()
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}
	return v
}

func expectOutput(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("expected output to contain %q, got:\n%s", w, out)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := mustLoad(t, newViper())
	if !reflect.DeepEqual(cfg, model.DefaultConfig()) {
		t.Errorf("expected default config, got %+v", cfg)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ARTEXPLORER_API_BASE_URL", "https://catalogue.example/api/v1")
	t.Setenv("ARTEXPLORER_VIEWER_LENS_ZOOM", "4.5")
	t.Setenv("ARTEXPLORER_HTTP_TIMEOUT", "3s")

	cfg := mustLoad(t, newViper())
	if cfg.API.BaseURL != "https://catalogue.example/api/v1" {
		t.Errorf("expected base URL from env, got %q", cfg.API.BaseURL)
	}
	if cfg.Viewer.LensZoom != 4.5 {
		t.Errorf("expected lens zoom 4.5, got %v", cfg.Viewer.LensZoom)
	}
	if cfg.HTTP.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", cfg.HTTP.Timeout)
	}
}

func TestLoadConfig_BackendBaseURL(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://backend:8000/api/v1")

	cfg := mustLoad(t, newViper())
	if cfg.API.BaseURL != "http://backend:8000/api/v1" {
		t.Errorf("expected BACKEND_BASE_URL to be used, got %q", cfg.API.BaseURL)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9090\"\ncache:\n  ttl: 5m\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := mustLoad(t, readFileConfig(t, path))
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Server.Addr)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("expected cache TTL 5m, got %v", cfg.Cache.TTL)
	}
	if !reflect.DeepEqual(cfg.Viewer, model.DefaultConfig().Viewer) {
		t.Errorf("expected default viewer settings, got %+v", cfg.Viewer)
	}
}

func TestLoadConfig_Verbose(t *testing.T) {
	v := newViper()
	v.Set("verbose", true)

	cfg := mustLoad(t, v)
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("ARTEXPLORER_API_BASE_URL", "not a url")

	_, err := loadConfig(newViper())
	if err == nil {
		t.Fatal("expected error for invalid base URL")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("expected invalid config error, got %v", err)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}

	cfg := mustLoad(t, readFileConfig(t, path))
	if !reflect.DeepEqual(cfg, model.DefaultConfig()) {
		t.Errorf("expected written config to load as defaults, got %+v", cfg)
	}

	err := writeDefaultConfig(path)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}
}

func TestShowConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := showConfig(&buf, model.DefaultConfig()); err != nil {
		t.Fatalf("showConfig: %v", err)
	}
	expectOutput(t, buf.String(),
		"base_url: http://localhost:8000/api/v1",
		"lens_zoom: 3",
	)
}

func TestSummarize(t *testing.T) {
	results := []*worker.CheckResult{
		{Key: "van-gogh/starry-night", Report: &model.Report{Key: "van-gogh/starry-night", FactsCount: 3, Signals: []model.Signal{}}},
		{Key: "monet/water-lilies", Report: &model.Report{
			Key:        "monet/water-lilies",
			FactsCount: 1,
			Signals: []model.Signal{{
				Type:        model.SignalGeometryOutOfBounds,
				Severity:    model.SeverityCritical,
				Description: "fact 1 extends outside the painting",
			}},
		}},
		{Key: "nobody/nothing", Error: errors.New("painting not found")},
	}

	var buf bytes.Buffer
	reports := summarize(&buf, results)

	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	expectOutput(t, buf.String(),
		"✓ van-gogh/starry-night (3 facts)",
		"! monet/water-lilies (1 facts, worst: critical)",
		"[critical] geometry_out_of_bounds",
		"✗ nobody/nothing",
		"Flagged:   1",
		"Failures:  1",
	)
}

func TestWriteReports(t *testing.T) {
	reports := []*model.Report{{Key: "van-gogh/starry-night", FactsCount: 2, Signals: []model.Signal{}}}
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "report.json")
	if err := writeReports(jsonPath, reports); err != nil {
		t.Fatalf("write json: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "[") {
		t.Errorf("expected JSON array, got %s", data)
	}
	expectOutput(t, string(data), `"key": "van-gogh/starry-night"`)

	yamlPath := filepath.Join(dir, "report.yaml")
	if err := writeReports(yamlPath, reports); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]interface{}
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["key"] != "van-gogh/starry-night" {
		t.Errorf("expected one report for van-gogh/starry-night, got %v", decoded)
	}

	if err := writeReports(filepath.Join(dir, "report.txt"), reports); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestFailOn(t *testing.T) {
	threshold, err := parseFailOn("Warning")
	if err != nil || threshold != model.SeverityWarning {
		t.Errorf("expected warning threshold, got %q (%v)", threshold, err)
	}

	threshold, err = parseFailOn("never")
	if err != nil || threshold != "" {
		t.Errorf("expected empty threshold for never, got %q (%v)", threshold, err)
	}

	if _, err := parseFailOn("sometimes"); err == nil {
		t.Error("expected error for unknown threshold")
	}

	tests := []struct {
		got, threshold model.SignalSeverity
		want           bool
	}{
		{model.SeverityCritical, model.SeverityWarning, true},
		{model.SeverityInfo, model.SeverityWarning, false},
		{"", model.SeverityInfo, false},
	}
	for _, tt := range tests {
		if got := severityAtLeast(tt.got, tt.threshold); got != tt.want {
			t.Errorf("severityAtLeast(%q, %q): expected %v, got %v", tt.got, tt.threshold, tt.want, got)
		}
	}
}
