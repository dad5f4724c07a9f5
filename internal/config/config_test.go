package config

import "testing"

const defaultMaxSpecSize int64 = 10 * 1024 * 1024

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TEMPLATE_PATH", "")
	t.Setenv("MAX_SPEC_SIZE", "")
	t.Setenv("MAX_BATCH_WORKERS", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("ASSET_BUCKET", "")

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetTemplatePath() != "./templates" {
		t.Fatalf("expected default template path ./templates, got %s", cfg.GetTemplatePath())
	}
	if cfg.GetMaxSpecSize() != defaultMaxSpecSize {
		t.Fatalf("expected default max spec size %d, got %d", defaultMaxSpecSize, cfg.GetMaxSpecSize())
	}
	if cfg.GetMaxBatchWorkers() != 4 {
		t.Fatalf("expected default batch workers 4, got %d", cfg.GetMaxBatchWorkers())
	}
	if cfg.GetSupabaseURL() != "" {
		t.Fatalf("expected default supabase url empty, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetAssetBucket() != "assets" {
		t.Fatalf("expected default asset bucket assets, got %s", cfg.GetAssetBucket())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TEMPLATE_PATH", "/srv/templates")
	t.Setenv("MAX_SPEC_SIZE", "12345")
	t.Setenv("MAX_BATCH_WORKERS", "9")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("ASSET_BUCKET", "docs")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetTemplatePath() != "/srv/templates" {
		t.Fatalf("expected template path /srv/templates, got %s", cfg.GetTemplatePath())
	}
	if cfg.GetMaxSpecSize() != 12345 {
		t.Fatalf("expected max spec size 12345, got %d", cfg.GetMaxSpecSize())
	}
	if cfg.GetMaxBatchWorkers() != 9 {
		t.Fatalf("expected batch workers 9, got %d", cfg.GetMaxBatchWorkers())
	}
	if cfg.GetSupabaseURL() != "http://localhost:54321" {
		t.Fatalf("expected supabase url http://localhost:54321, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetSupabaseKey() != "test-key" {
		t.Fatalf("expected supabase key test-key, got %s", cfg.GetSupabaseKey())
	}
	if cfg.GetAssetBucket() != "docs" {
		t.Fatalf("expected asset bucket docs, got %s", cfg.GetAssetBucket())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_SPEC_SIZE", "not-a-number")
	t.Setenv("MAX_BATCH_WORKERS", "zero")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxSpecSize() != defaultMaxSpecSize {
		t.Fatalf("expected default max spec size %d, got %d", defaultMaxSpecSize, cfg.GetMaxSpecSize())
	}
	if cfg.GetMaxBatchWorkers() != 4 {
		t.Fatalf("expected default batch workers 4, got %d", cfg.GetMaxBatchWorkers())
	}
}
