package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "qahub" {
		t.Errorf("expected Name=qahub, got %s", cfg.Name)
	}
	if cfg.LLM.Provider != "groq" {
		t.Errorf("expected Provider=groq, got %s", cfg.LLM.Provider)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected Backend=sqlite, got %s", cfg.Store.Backend)
	}
	if cfg.Extract.Marker != "CASE:" {
		t.Errorf("expected Marker=CASE:, got %s", cfg.Extract.Marker)
	}
	if len(cfg.Extract.Denylist) == 0 {
		t.Error("expected non-empty default denylist")
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-test"
	cfg.Extract.Denylist = []string{"TEMPLATE:", "[Scenario]"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LLM.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %s", loaded.LLM.Provider)
	}
	if len(loaded.Extract.Denylist) != 2 || loaded.Extract.Denylist[0] != "TEMPLATE:" {
		t.Errorf("denylist not round-tripped: %v", loaded.Extract.Denylist)
	}
}

func TestConfig_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "qahub" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("QAHUB_DB", "/tmp/override.db")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected APIKey=env-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected Provider switched to openai, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.BaseURL != "" || cfg.LLM.Model != "" {
		t.Errorf("adopting a provider should drop the old endpoint, got %s / %s", cfg.LLM.BaseURL, cfg.LLM.Model)
	}
	if cfg.Store.Path != "/tmp/override.db" {
		t.Errorf("expected store path override, got %s", cfg.Store.Path)
	}
}

func TestConfig_EnvOverrides_RespectConfiguredProvider(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "ambient-openai")
	t.Setenv("GEMINI_API_KEY", "ambient-gemini")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "groq"
	cfg.LLM.APIKey = "file-key"
	cfg.applyEnvOverrides()

	if cfg.LLM.Provider != "groq" {
		t.Errorf("ambient key flipped the configured provider to %s", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Errorf("ambient key replaced the configured key: %s", cfg.LLM.APIKey)
	}
}

func TestConfig_EnvOverrides_MatchingKeyReplacesFileKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "env-groq")
	t.Setenv("OPENAI_API_KEY", "ambient-openai")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := DefaultConfig()
	cfg.LLM.APIKey = "file-key"
	cfg.applyEnvOverrides()

	if cfg.LLM.Provider != "groq" {
		t.Errorf("provider changed to %s", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "env-groq" {
		t.Errorf("expected matching env key to win, got %s", cfg.LLM.APIKey)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	cfg.LLM.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	cfg.LLM.Provider = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown provider")
	}

	cfg.LLM.Provider = "groq"
	cfg.Store.Backend = "punchcards"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown backend")
	}
}

func TestConfig_StorePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/qahub"

	if got := cfg.StorePath(); got != filepath.Join("/var/qahub", "qahub.db") {
		t.Errorf("sqlite path = %s", got)
	}

	cfg.Store.Backend = "json"
	if got := cfg.StorePath(); got != filepath.Join("/var/qahub", "qa_database.json") {
		t.Errorf("json path = %s", got)
	}

	cfg.Store.Path = "/explicit/file.db"
	if got := cfg.StorePath(); got != "/explicit/file.db" {
		t.Errorf("explicit path = %s", got)
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLMTimeout() != 120*time.Second {
		t.Errorf("default LLM timeout = %v", cfg.LLMTimeout())
	}
	cfg.LLM.Timeout = "bogus"
	if cfg.LLMTimeout() != 120*time.Second {
		t.Errorf("bogus timeout should fall back, got %v", cfg.LLMTimeout())
	}
	cfg.Server.ReadTimeout = "5s"
	r, w := cfg.ServerTimeouts()
	if r != 5*time.Second || w != 30*time.Second {
		t.Errorf("server timeouts = %v, %v", r, w)
	}
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	cfg.Extract.Marker = "ROW:"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	// Write again in case the first save raced the watch setup; the
	// debounce window means at most one reload fires.
	time.Sleep(600 * time.Millisecond)
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-reloaded:
		if c.Extract.Marker != "ROW:" {
			t.Errorf("reloaded marker = %s", c.Extract.Marker)
		}
	case <-time.After(3 * time.Second):
		t.Skip("no fsnotify event delivered; filesystem may not support inotify")
	}
}
