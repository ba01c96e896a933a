package kv

import (
	"context"
	"path/filepath"
	"testing"

	"shelf-go/internal/config"
)

func TestNewStoreFromConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{
			name: "memory store",
			cfg:  config.StoreConfig{Type: "memory"},
		},
		{
			name: "filesystem store",
			cfg:  config.StoreConfig{Type: "filesystem", FSRoot: filepath.Join(dir, "fs")},
		},
		{
			name:    "filesystem store without root",
			cfg:     config.StoreConfig{Type: "filesystem"},
			wantErr: true,
		},
		{
			name: "sqlite store",
			cfg:  config.StoreConfig{Type: "sqlite", SQLitePath: filepath.Join(dir, "shelf.db")},
		},
		{
			name:    "sqlite store without path",
			cfg:     config.StoreConfig{Type: "sqlite"},
			wantErr: true,
		},
		{
			name:    "redis store without address",
			cfg:     config.StoreConfig{Type: "redis"},
			wantErr: true,
		},
		{
			name:    "s3 store without bucket",
			cfg:     config.StoreConfig{Type: "s3"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cfg:     config.StoreConfig{Type: "floppy"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStoreFromConfig(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				t.Cleanup(func() { s.Close() })
			}
		})
	}
}
