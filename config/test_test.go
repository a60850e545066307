package config

import "testing"

func TestLoadTest_ProducesSaneDefaultsForLocalRuns(t *testing.T) {
	cfg := LoadTest()

	if cfg.SleepSeconds != 0 {
		t.Errorf("expected test config to skip supervisor sleep, got %d", cfg.SleepSeconds)
	}
	if cfg.AllowInsecureSSL != true {
		t.Error("expected test config to allow insecure SSL for local fixture servers")
	}
	if cfg.BatchSize <= 0 {
		t.Errorf("expected a positive batch size, got %d", cfg.BatchSize)
	}
	if cfg.AdminAddr != ":0" {
		t.Errorf("expected an ephemeral admin port for tests, got %q", cfg.AdminAddr)
	}
}
