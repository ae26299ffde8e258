// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetDocgenConfig_EmbeddedDefaults(t *testing.T) {
	ResetDocgenConfig()
	t.Cleanup(ResetDocgenConfig)

	cfg, err := GetDocgenConfig(context.Background())
	if err != nil {
		t.Fatalf("GetDocgenConfig: %v", err)
	}

	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.Server.ListenAddr, DefaultListenAddr)
	}
	if cfg.Store.MaxDocs != DefaultMaxDocs {
		t.Errorf("MaxDocs = %d, want %d", cfg.Store.MaxDocs, DefaultMaxDocs)
	}
	if cfg.Generator.ErrorPolicy != "log" {
		t.Errorf("ErrorPolicy = %q, want log", cfg.Generator.ErrorPolicy)
	}
	if len(cfg.Scan.Extensions) != 3 {
		t.Errorf("Extensions = %v, want .js/.mjs/.cjs", cfg.Scan.Extensions)
	}
	if cfg.Watch.DebounceMS != DefaultDebounceMS {
		t.Errorf("DebounceMS = %d, want %d", cfg.Watch.DebounceMS, DefaultDebounceMS)
	}

	// Second call returns the cached instance.
	again, err := GetDocgenConfig(context.Background())
	if err != nil {
		t.Fatalf("second GetDocgenConfig: %v", err)
	}
	if again != cfg {
		t.Error("config not cached between calls")
	}
}

func TestGetDocgenConfig_NilContext(t *testing.T) {
	if _, err := GetDocgenConfig(nil); err == nil {
		t.Fatal("expected error for nil context")
	}
}

func TestLoadDocgenConfig_AppliesDefaults(t *testing.T) {
	cfg, err := LoadDocgenConfig(context.Background(), []byte("badger:\n  in_memory: true\n"))
	if err != nil {
		t.Fatalf("LoadDocgenConfig: %v", err)
	}

	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want default", cfg.Server.ListenAddr)
	}
	if cfg.Scan.Concurrency != DefaultScanConcurrency {
		t.Errorf("Concurrency = %d, want %d", cfg.Scan.Concurrency, DefaultScanConcurrency)
	}
	if cfg.Scan.MaxFileSizeBytes != DefaultMaxFileSizeBytes {
		t.Errorf("MaxFileSizeBytes = %d, want %d", cfg.Scan.MaxFileSizeBytes, DefaultMaxFileSizeBytes)
	}
}

func TestLoadDocgenConfig_CapsConcurrency(t *testing.T) {
	yaml := "badger:\n  in_memory: true\nscan:\n  concurrency: 500\n"
	cfg, err := LoadDocgenConfig(context.Background(), []byte(yaml))
	if err != nil {
		t.Fatalf("LoadDocgenConfig: %v", err)
	}
	if cfg.Scan.Concurrency != MaxScanConcurrency {
		t.Errorf("Concurrency = %d, want cap %d", cfg.Scan.Concurrency, MaxScanConcurrency)
	}
}

func TestLoadDocgenConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty data",
			yaml:    "",
			wantErr: "empty YAML",
		},
		{
			name:    "bad error policy",
			yaml:    "badger:\n  in_memory: true\ngenerator:\n  error_policy: panic\n",
			wantErr: "error_policy",
		},
		{
			name:    "negative rate limit",
			yaml:    "badger:\n  in_memory: true\nserver:\n  rate_limit_rps: -1\n",
			wantErr: "rate_limit_rps",
		},
		{
			name:    "rate limit without burst",
			yaml:    "badger:\n  in_memory: true\nserver:\n  rate_limit_rps: 5\n",
			wantErr: "rate_limit_burst",
		},
		{
			name:    "on-disk badger without path",
			yaml:    "store:\n  max_docs: 10\n",
			wantErr: "badger.path",
		},
		{
			name:    "extension without dot",
			yaml:    "badger:\n  in_memory: true\nscan:\n  extensions: [\"js\"]\n",
			wantErr: "must start with a dot",
		},
		{
			name:    "discard ratio above one",
			yaml:    "badger:\n  in_memory: true\n  gc_discard_ratio: 1.5\n",
			wantErr: "gc_discard_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDocgenConfig(context.Background(), []byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDocgenConfigFile_ReplacesCache(t *testing.T) {
	ResetDocgenConfig()
	t.Cleanup(ResetDocgenConfig)

	path := filepath.Join(t.TempDir(), "docgen.yaml")
	yaml := "server:\n  listen_addr: \":9999\"\nbadger:\n  in_memory: true\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadDocgenConfigFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadDocgenConfigFile: %v", err)
	}
	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q, want :9999", cfg.Server.ListenAddr)
	}

	cached, err := GetDocgenConfig(context.Background())
	if err != nil {
		t.Fatalf("GetDocgenConfig: %v", err)
	}
	if cached.Server.ListenAddr != ":9999" {
		t.Error("loaded file did not replace the cached config")
	}
}

func TestLoadDocgenConfigFile_MissingFile(t *testing.T) {
	if _, err := LoadDocgenConfigFile(context.Background(), "/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
