package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name    string
		tracks  []Track
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid two-track catalog",
			tracks: []Track{
				{ID: "https://example.com/a.mp3", Title: "Music 1", Artist: "Artist 1", Duration: 30 * time.Second},
				{ID: "https://example.com/b.mp3", Title: "Music 2", Artist: "Artist 2", Duration: 30 * time.Second},
			},
			wantErr: false,
		},
		{
			name:    "empty catalog is allowed",
			tracks:  nil,
			wantErr: false,
		},
		{
			name: "empty id rejected",
			tracks: []Track{
				{ID: "", Title: "No ID"},
			},
			wantErr: true,
			errMsg:  "empty id",
		},
		{
			name: "duplicate id rejected",
			tracks: []Track{
				{ID: "dup", Title: "First"},
				{ID: "dup", Title: "Second"},
			},
			wantErr: true,
			errMsg:  "duplicate track id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCatalog(tt.tracks)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.tracks), c.Len())
		})
	}
}

func TestCatalog_First(t *testing.T) {
	c, err := NewCatalog([]Track{
		{ID: "a", Title: "First"},
		{ID: "b", Title: "Second"},
	})
	require.NoError(t, err)

	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, "a", first.ID)

	empty, err := NewCatalog(nil)
	require.NoError(t, err)
	_, ok = empty.First()
	assert.False(t, ok)
}

func TestCatalog_FindByID(t *testing.T) {
	c, err := NewCatalog([]Track{
		{ID: "a", Title: "First"},
		{ID: "b", Title: "Second"},
	})
	require.NoError(t, err)

	found, ok := c.FindByID("b")
	require.True(t, ok)
	assert.Equal(t, "Second", found.Title)

	_, ok = c.FindByID("missing")
	assert.False(t, ok)
}

func TestCatalog_TracksReturnsCopy(t *testing.T) {
	c, err := NewCatalog([]Track{{ID: "a", Title: "First"}})
	require.NoError(t, err)

	tracks := c.Tracks()
	tracks[0].Title = "Mutated"

	first, _ := c.First()
	assert.Equal(t, "First", first.Title)
}

func TestTrack_Locator(t *testing.T) {
	tr := Track{ID: "https://example.com/a.mp3", Title: "Music 1"}
	assert.Equal(t, "https://example.com/a.mp3", tr.Locator())
}
