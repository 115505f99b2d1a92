package main

import (
	"strings"
	"testing"

	"fintrack/internal/config"
)

func TestCheckWorkerConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{"sqlite with amqp", config.Config{DataBackend: "sqlite", AMQPURL: "amqp://localhost"}, ""},
		{"no amqp", config.Config{DataBackend: "sqlite"}, "AMQP_URL is required"},
		{"bolt", config.Config{DataBackend: "bolt", AMQPURL: "amqp://localhost"}, "must be sqlite"},
		{"memory", config.Config{DataBackend: "memory", AMQPURL: "amqp://localhost"}, "must be sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkWorkerConfig(&tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %v does not contain %q", err, tt.wantErr)
			}
		})
	}
}
