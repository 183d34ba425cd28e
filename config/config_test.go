package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
redis:
  addr: "localhost:6379"
  db: 2
cache_collection: "feed_cache_v2"
default_limit: 25
max_limit: 200
policy: 'item.region == "" || item.region == fctx.region'
ranking:
  like_weight: 1.5
  recency_half_life_hours: 24
flags:
  ranking: true
  refresh: false
feast:
  host: "feast.internal"
  port: 6565
  project: "feed"
`
	path := filepath.Join(t.TempDir(), "feedkit.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML(): %v", err)
	}

	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v, want localhost:6379/2", cfg.Redis)
	}
	if cfg.CacheCollection != "feed_cache_v2" {
		t.Errorf("CacheCollection = %s, want feed_cache_v2", cfg.CacheCollection)
	}
	if cfg.DefaultLimit != 25 || cfg.MaxLimit != 200 {
		t.Errorf("limits = %d/%d, want 25/200", cfg.DefaultLimit, cfg.MaxLimit)
	}
	if cfg.Policy == "" {
		t.Error("Policy empty, want expression")
	}
	if cfg.Ranking.LikeWeight != 1.5 {
		t.Errorf("Ranking.LikeWeight = %v, want 1.5", cfg.Ranking.LikeWeight)
	}
	if cfg.Ranking.RecencyHalfLifeHours != 24 {
		t.Errorf("Ranking.RecencyHalfLifeHours = %v, want 24", cfg.Ranking.RecencyHalfLifeHours)
	}
	if v, ok := cfg.Flags["ranking"]; !ok || !v {
		t.Errorf("Flags[ranking] = %v/%v, want true", v, ok)
	}
	if v, ok := cfg.Flags["refresh"]; !ok || v {
		t.Errorf("Flags[refresh] = %v/%v, want explicit false", v, ok)
	}
	if cfg.Feast.Host != "feast.internal" || cfg.Feast.Project != "feed" {
		t.Errorf("feast = %+v", cfg.Feast)
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	if _, err := LoadFromYAML("/nonexistent/feedkit.yaml"); err == nil {
		t.Error("LoadFromYAML() on missing file, want error")
	}
}

func TestBuildEngine_NilConfig(t *testing.T) {
	if _, err := BuildEngine(nil, nil, nil); err == nil {
		t.Error("BuildEngine(nil), want error")
	}
	if _, err := BuildEngine(&Config{}, nil, nil); err == nil {
		t.Error("BuildEngine() without redis addr, want error")
	}
}
