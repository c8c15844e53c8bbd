package config

import "testing"

func TestLiveAuthConfigured(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		want bool
	}{
		{"both set", "https://auth.example.com", "sk_live_abc", true},
		{"missing url", "", "sk_live_abc", false},
		{"missing key", "https://auth.example.com", "", false},
		{"template url", "YOUR_AUTH_PROVIDER_URL", "sk_live_abc", false},
		{"template key", "https://auth.example.com", "changeme", false},
		{"todo key", "https://auth.example.com", "TODO", false},
		{"whitespace only", "   ", "sk_live_abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AuthProviderURL: tt.url, AuthProviderKey: tt.key}
			if got := cfg.LiveAuthConfigured(); got != tt.want {
				t.Fatalf("LiveAuthConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port == "" {
		t.Fatal("expected a default port")
	}
	if cfg.ForecastCacheTTL <= 0 {
		t.Fatal("expected a positive forecast cache TTL")
	}
}
