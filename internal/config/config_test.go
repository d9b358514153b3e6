package config

import (
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	t.Setenv("TEST_GETENV", "value")
	if got := getenv("TEST_GETENV", "def"); got != "value" {
		t.Errorf("getenv() = %q, want value", got)
	}
	if got := getenv("TEST_GETENV_MISSING", "def"); got != "def" {
		t.Errorf("getenv() = %q, want def", got)
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{name: "valid duration", value: "10s", def: time.Second, want: 10 * time.Second},
		{name: "invalid falls back", value: "not-a-duration", def: time.Second, want: time.Second},
		{name: "empty falls back", value: "", def: 2 * time.Minute, want: 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_DURATION", tt.value)
			}
			if got := mustDuration("TEST_DURATION", tt.def); got != tt.want {
				t.Errorf("mustDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "false")
	if mustBool("TEST_BOOL", true) {
		t.Error("mustBool() = true, want false")
	}
	t.Setenv("TEST_BOOL", "garbage")
	if !mustBool("TEST_BOOL", true) {
		t.Error("mustBool(garbage) should fall back to default")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(` "https://app.example.com" , http://localhost:3000 ,, `)
	want := []string{"https://app.example.com", "http://localhost:3000"}
	if len(got) != len(want) {
		t.Fatalf("splitAndTrim() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitAndTrim()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if splitAndTrim("") != nil {
		t.Error("splitAndTrim(empty) should be nil")
	}
}

func TestLoadValidatesAuthProvider(t *testing.T) {
	t.Setenv("BMK_AUTH_PROVIDER", "oidc")
	t.Setenv("BMK_AUTH_USERINFO_URL", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic when oidc provider has no userinfo URL")
		}
	}()
	Load()
}

func TestLoadRedisTuningUsesPrefixedEnv(t *testing.T) {
	t.Setenv("BMK_AUTH_PROVIDER", "file")
	t.Setenv("BMK_AUTH_TOKEN_FILE", "/etc/bookmarkd/tokens.yaml")
	t.Setenv("BMK_REDIS_DIAL_TIMEOUT", "9s")
	t.Setenv("BMK_REDIS_POOL_SIZE", "42")

	cfg := Load()
	if cfg.RedisDT != 9*time.Second {
		t.Errorf("Load() redis dial timeout = %v, want 9s", cfg.RedisDT)
	}
	if cfg.RedisPoolSize != 42 {
		t.Errorf("Load() redis pool size = %d, want 42", cfg.RedisPoolSize)
	}
}

func TestLoadFileProvider(t *testing.T) {
	t.Setenv("BMK_AUTH_PROVIDER", "file")
	t.Setenv("BMK_AUTH_TOKEN_FILE", "/etc/bookmarkd/tokens.yaml")
	t.Setenv("BMK_STORAGE", "memory")

	cfg := Load()
	if cfg.AuthProvider != "file" || cfg.TokenFile != "/etc/bookmarkd/tokens.yaml" {
		t.Errorf("Load() auth = %q/%q", cfg.AuthProvider, cfg.TokenFile)
	}
	if cfg.Storage != "memory" {
		t.Errorf("Load() storage = %q, want memory", cfg.Storage)
	}
	if cfg.ListenPort != ":8080" {
		t.Errorf("Load() listen port = %q, want :8080", cfg.ListenPort)
	}
}
