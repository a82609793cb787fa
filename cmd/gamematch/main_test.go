package main

import "testing"

func TestDeriveWSURL(t *testing.T) {
	tests := []struct {
		apiURL string
		want   string
	}{
		{"https://api.gamematch.gg", "wss://api.gamematch.gg/ws/recruitments/"},
		{"http://localhost:8000", "ws://localhost:8000/ws/recruitments/"},
		{"https://api.gamematch.gg/", "wss://api.gamematch.gg/ws/recruitments/"},
		{"http://127.0.0.1:8000/v2", "ws://127.0.0.1:8000/v2/ws/recruitments/"},
	}
	for _, tt := range tests {
		t.Run(tt.apiURL, func(t *testing.T) {
			got := deriveWSURL(tt.apiURL)
			if got != tt.want {
				t.Errorf("deriveWSURL(%q) = %q, want %q", tt.apiURL, got, tt.want)
			}
		})
	}
}

func TestReadTokenPrefersEnv(t *testing.T) {
	t.Setenv("GAMEMATCH_TOKEN", "env-token")
	if got := readToken(); got != "env-token" {
		t.Errorf("readToken() = %q, want env token", got)
	}
}
