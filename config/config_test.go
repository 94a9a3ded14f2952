package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
api:
  address: "127.0.0.1"
  port: 8080
database:
  path: "/tmp/tibberwatch.db"
tibber:
  api_token: "test-token"
  update_interval_minutes: 5
analytics:
  hours_duration: 4
  battery_efficiency: 86
  window_start: "17:00"
  window_end: "07:00"
mqtt:
  enabled: true
  host: "broker.local"
  port: 1883
logging:
  console_level: "DEBUG"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	c, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if c.Tibber.ApiToken != "test-token" {
		t.Errorf("expected api token %q, got %q", "test-token", c.Tibber.ApiToken)
	}
	if got := c.Tibber.GetUpdateIntervalMinutes(); got != 5 {
		t.Errorf("expected update interval 5, got %d", got)
	}
	if got := c.Analytics.GetHoursDuration(); got != 4 {
		t.Errorf("expected hours duration 4, got %d", got)
	}
	if got := c.Analytics.GetBatteryEfficiency(); got != 86 {
		t.Errorf("expected battery efficiency 86, got %f", got)
	}

	band, err := c.Analytics.GetBand()
	if err != nil {
		t.Fatalf("GetBand() error: %v", err)
	}
	if !band.Wraps() {
		t.Error("17:00-07:00 band should wrap past midnight")
	}

	if !c.Mqtt.Enabled || c.Mqtt.Host != "broker.local" {
		t.Errorf("unexpected mqtt config: %+v", c.Mqtt)
	}
	if got := c.Mqtt.GetTopicPrefix(); got != "tibberwatch" {
		t.Errorf("expected default topic prefix, got %q", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "tibber:\n  api_token: \"x\"\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := c.Analytics.GetHoursDuration(); got != 3 {
		t.Errorf("expected default hours duration 3, got %d", got)
	}
	if got := c.Analytics.GetBatteryEfficiency(); got != 75 {
		t.Errorf("expected default battery efficiency 75, got %f", got)
	}

	band, err := c.Analytics.GetBand()
	if err != nil {
		t.Fatalf("GetBand() error: %v", err)
	}
	if !band.IsWholeDay() {
		t.Errorf("expected whole-day default band, got %s", band)
	}

	if got := c.Tibber.GetUpdateIntervalMinutes(); got != 15 {
		t.Errorf("expected default update interval 15, got %d", got)
	}
	if got := c.Database.GetBackupRetentionDays(); got != 90 {
		t.Errorf("expected default backup retention 90, got %d", got)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	if _, err := Load(writeConfig(t, "tibber:\n  api_token: \"\"\n")); err == nil {
		t.Error("missing api token should fail validation")
	}

	badBand := "tibber:\n  api_token: \"x\"\nanalytics:\n  window_start: \"25:00\"\n"
	if _, err := Load(writeConfig(t, badBand)); err == nil {
		t.Error("invalid window_start should fail validation")
	}

	badEff := "tibber:\n  api_token: \"x\"\nanalytics:\n  battery_efficiency: 140\n"
	if _, err := Load(writeConfig(t, badEff)); err == nil {
		t.Error("battery efficiency above 100 should fail validation")
	}
}
