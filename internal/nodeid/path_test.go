package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_String(t *testing.T) {
	testCases := []struct {
		name        string
		path        Path
		expectedStr string
	}{
		{name: "root node", path: Path{73}, expectedStr: "73"},
		{name: "nested", path: Path{54, 62, 174}, expectedStr: "54:62:174"},
		{name: "empty", path: nil, expectedStr: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.path.String())
		})
	}
}

func TestPath_RoundTrip(t *testing.T) {
	for _, id := range []string{"73", "54:73", "54:62:174", "1:2:3:4:5"} {
		t.Run(id, func(t *testing.T) {
			path, err := Parse(id)
			require.NoError(t, err)
			assert.Equal(t, id, path.String())

			again, err := Parse(path.String())
			require.NoError(t, err)
			assert.True(t, path.Equal(again))
		})
	}
}

func TestPath_TargetAndPrefix(t *testing.T) {
	p := MustParse("54:62:174")
	assert.Equal(t, int64(174), p.Target())
	assert.Equal(t, Path{54, 62}, p.Prefix())
	assert.False(t, p.IsRoot())

	root := MustParse("73")
	assert.Equal(t, int64(73), root.Target())
	assert.Empty(t, root.Prefix())
	assert.True(t, root.IsRoot())

	var empty Path
	assert.Equal(t, int64(-1), empty.Target())
	assert.Nil(t, empty.Prefix())
}

func TestPath_ChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 8)
	base[0] = 54

	a := base.Child(1)
	b := base.Child(2)

	assert.Equal(t, "54:1", a.String())
	assert.Equal(t, "54:2", b.String())
	assert.Equal(t, "54", base.String())
}

func TestPath_Equal(t *testing.T) {
	assert.True(t, MustParse("1:2").Equal(Path{1, 2}))
	assert.False(t, MustParse("1:2").Equal(Path{2, 1}))
	assert.False(t, MustParse("1:2").Equal(Path{1}))
	assert.True(t, Path(nil).Equal(Path{}))
}

func TestFormatLocalID(t *testing.T) {
	assert.Equal(t, "174", FormatLocalID(174))
}
