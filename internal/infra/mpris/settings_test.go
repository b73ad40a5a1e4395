package mpris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    Settings
		wantErr bool
	}{
		{
			name: "nil settings use defaults",
			raw:  nil,
			want: Settings{Name: "automedia", Identity: "Auto Media"},
		},
		{
			name: "identity override",
			raw:  map[string]any{"identity": "Car Media"},
			want: Settings{Name: "automedia", Identity: "Car Media"},
		},
		{
			name: "name override",
			raw:  map[string]any{"name": "carmedia", "identity": "Car Media"},
			want: Settings{Name: "carmedia", Identity: "Car Media"},
		},
		{
			name:    "wrong type rejected",
			raw:     map[string]any{"name": 42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := ParseSettings(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *settings)
		})
	}
}
