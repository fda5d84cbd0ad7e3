package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBumpStableBoundary(t *testing.T) {
	v := Zero()

	patched, err := v.Bump(LevelPatch)
	require.NoError(t, err)
	assert.Equal(t, "0.0.1", patched.String())

	minored, err := v.Bump(LevelMinor)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", minored.String())

	majored, err := v.Bump(LevelMajor)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", majored.String())
}

func TestBumpPreReleaseSuffix(t *testing.T) {
	cases := []struct {
		start string
		level BumpLevel
		want  string
	}{
		{"1.8.0-alpha", LevelPatch, "1.8.0-alpha.1"},
		{"1.8.0-alpha.2", LevelMajor, "2.0.0-alpha"},
		{"2.0.0-rc.3", LevelMinor, "2.0.0-rc.4"},
	}

	for _, c := range cases {
		v, err := Parse(c.start)
		require.NoError(t, err)
		bumped, err := v.Bump(c.level)
		require.NoError(t, err)
		assert.Equal(t, c.want, bumped.String())
	}
}

func TestParseRejectsNumericPreReleaseLeadingSegment(t *testing.T) {
	_, err := Parse("1.0.0-1")
	assert.Error(t, err)
}

func TestParseAcceptsVPrefixAndLatest(t *testing.T) {
	v, err := Parse("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	latest, err := Parse("latest")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", latest.String())
}

func TestCompareStableVsPreRelease(t *testing.T) {
	stable := MustParse("1.0.0")
	pre := MustParse("1.0.0-rc.1")
	assert.True(t, stable.GreaterThan(pre))
	assert.True(t, pre.LessThan(stable))
}

func TestJoinIsMax(t *testing.T) {
	assert.Equal(t, LevelMajor, Join(LevelPatch, LevelMajor))
	assert.Equal(t, LevelMinor, Join(LevelMinor, LevelNone))
}

func TestValidPreReleaseLabel(t *testing.T) {
	assert.True(t, ValidPreReleaseLabel("alpha"))
	assert.True(t, ValidPreReleaseLabel("rc-1"))
	assert.False(t, ValidPreReleaseLabel(""))
	assert.False(t, ValidPreReleaseLabel("123"))
}
