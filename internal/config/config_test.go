package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Worker.Concurrency != 2 {
		t.Errorf("concurrency = %d, want 2", cfg.Worker.Concurrency)
	}
	if cfg.Worker.MaxJobsPerSec != 10 {
		t.Errorf("max jobs/sec = %v, want 10", cfg.Worker.MaxJobsPerSec)
	}
	if cfg.Worker.MaxRetry != 3 {
		t.Errorf("max retry = %d, want 3", cfg.Worker.MaxRetry)
	}
	if cfg.Worker.RetryBaseDelay != 2*time.Second {
		t.Errorf("retry base delay = %v, want 2s", cfg.Worker.RetryBaseDelay)
	}
	if cfg.Upload.MaxBytes != 50*1024*1024 {
		t.Errorf("upload max bytes = %d, want 50MiB", cfg.Upload.MaxBytes)
	}
	if got := cfg.Recognition.CostPerPage["openai"]; got != 0.01 {
		t.Errorf("openai rate = %v, want 0.01", got)
	}
	if got := cfg.Recognition.CostPerPage["local"]; got != 0 {
		t.Errorf("local rate = %v, want 0", got)
	}
	if cfg.Server.RateLimitRPS != 100 || cfg.Server.RateLimitBurst != 200 {
		t.Errorf("api rate limit = %v/%d, want 100/200", cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("WORKER_RETRY_BASE_DELAY_MS", "500")
	t.Setenv("RECOGNITION_COST_PER_PAGE", "anthropic=0.02")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Worker.Concurrency != 8 {
		t.Errorf("concurrency = %d, want 8", cfg.Worker.Concurrency)
	}
	if cfg.Worker.RetryBaseDelay != 500*time.Millisecond {
		t.Errorf("retry base delay = %v, want 500ms", cfg.Worker.RetryBaseDelay)
	}
	if got := cfg.Recognition.CostPerPage["anthropic"]; got != 0.02 {
		t.Errorf("anthropic rate = %v, want 0.02", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "many")
	if _, err := Load(); err == nil {
		t.Error("want error for non-numeric WORKER_CONCURRENCY")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Database.URL = "postgres://localhost/docintel"
	cfg.Storage.SupabaseURL = "https://example.supabase.co"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.Database.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("want error for missing DATABASE_URL")
	}
}

func TestParseCostPerPage(t *testing.T) {
	t.Run("pairs", func(t *testing.T) {
		rates, err := parseCostPerPage("openai=0.01, anthropic=0.015 ,local=0")
		if err != nil {
			t.Fatalf("parseCostPerPage: %v", err)
		}
		if rates["openai"] != 0.01 || rates["anthropic"] != 0.015 || rates["local"] != 0 {
			t.Errorf("rates = %v", rates)
		}
	})

	t.Run("empty", func(t *testing.T) {
		rates, err := parseCostPerPage("")
		if err != nil {
			t.Fatalf("parseCostPerPage: %v", err)
		}
		if len(rates) != 0 {
			t.Errorf("rates = %v, want empty", rates)
		}
	})

	t.Run("malformed entry", func(t *testing.T) {
		if _, err := parseCostPerPage("openai"); err == nil {
			t.Error("want error for entry without rate")
		}
	})

	t.Run("bad rate", func(t *testing.T) {
		if _, err := parseCostPerPage("openai=cheap"); err == nil {
			t.Error("want error for non-numeric rate")
		}
	})
}
