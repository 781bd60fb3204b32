package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escola/internal/config"
)

func TestCheckConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.App
		wantErr  bool
		warnings int
	}{
		{"defaults warn about the local queue", config.App{StoreBackend: "memory", QueueBackend: "memory"}, false, 1},
		{"archive over memory store is refused", config.App{StoreBackend: "memory", QueueBackend: "redis", ArchiveCron: "@daily"}, true, 0},
		{"archive over empty store backend is refused", config.App{QueueBackend: "redis", ArchiveCron: "@daily"}, true, 0},
		{"shared queue and store", config.App{StoreBackend: "postgres", QueueBackend: "rabbitmq", ArchiveCron: "@daily"}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings, err := checkConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "ARCHIVE_CRON")
				return
			}
			require.NoError(t, err)
			assert.Len(t, warnings, tt.warnings)
		})
	}
}
