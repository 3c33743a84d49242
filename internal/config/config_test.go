package config

import (
	"reflect"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_DRIVER", "SESSION_STORE", "CORS_ORIGINS", "REDIS_DB", "NO_COLOR", "PLAIN"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" || cfg.SessionStore != "file" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RedisDB != 0 || cfg.NoColor {
		t.Fatalf("redis db %d, no color %v", cfg.RedisDB, cfg.NoColor)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("NO_COLOR", "1")
	cfg := FromEnv()
	if cfg.SessionStore != "redis" || cfg.RedisDB != 3 || !cfg.NoColor {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("origins %v", cfg.CORSOrigins)
	}
}

func TestEnvIntFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	if got := envInt("REDIS_DB", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
}
