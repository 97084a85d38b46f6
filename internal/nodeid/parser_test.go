package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		rawID        string
		expectErr    bool
		expectedPath Path
	}{
		{
			name:         "root node",
			rawID:        "73",
			expectedPath: Path{73},
		},
		{
			name:         "one level deep",
			rawID:        "54:73",
			expectedPath: Path{54, 73},
		},
		{
			name:         "two levels deep",
			rawID:        "54:62:174",
			expectedPath: Path{54, 62, 174},
		},
		{
			name:         "zero id",
			rawID:        "0:0",
			expectedPath: Path{0, 0},
		},
		{
			name:      "error - empty string",
			rawID:     "",
			expectErr: true,
		},
		{
			name:      "error - empty segment",
			rawID:     "54::73",
			expectErr: true,
		},
		{
			name:      "error - trailing separator",
			rawID:     "54:",
			expectErr: true,
		},
		{
			name:      "error - non numeric segment",
			rawID:     "54:abc",
			expectErr: true,
		},
		{
			name:      "error - negative id",
			rawID:     "-1",
			expectErr: true,
		},
		{
			name:      "error - explicit plus sign",
			rawID:     "+5",
			expectErr: true,
		},
		{
			name:      "error - whitespace",
			rawID:     "54: 73",
			expectErr: true,
		},
		{
			name:      "error - float",
			rawID:     "7.5",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path, err := Parse(tc.rawID)

			if tc.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedPath)
				return
			}

			require.NoError(t, err)
			assert.True(t, tc.expectedPath.Equal(path), "parsed %v, expected %v", path, tc.expectedPath)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("x") })
	assert.Equal(t, Path{1, 2}, MustParse("1:2"))
}
