package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevelNames(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"planning", LevelPlanning},
		{"Isolation", LevelIsolation},
		{"ORDERING", LevelOrdering},
		{"implementation", LevelImplementation},
		{"impl", LevelImplementation},
		{"0", LevelPlanning},
		{"3", LevelImplementation},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}

	_, err := ParseLevel("galactic")
	require.Error(t, err)
	_, err = ParseLevel("4")
	require.Error(t, err)
}

func TestLevelJSON(t *testing.T) {
	data, err := json.Marshal(LevelOrdering)
	require.NoError(t, err)
	assert.Equal(t, `"ordering"`, string(data))

	var l Level
	require.NoError(t, json.Unmarshal([]byte(`"isolation"`), &l))
	assert.Equal(t, LevelIsolation, l)

	require.NoError(t, json.Unmarshal([]byte(`2`), &l))
	assert.Equal(t, LevelOrdering, l)

	require.Error(t, json.Unmarshal([]byte(`"nope"`), &l))
}

func TestLevelCatalog(t *testing.T) {
	levels := AllLevels()
	require.Len(t, levels, 4)
	assert.Equal(t, "planning", levels[0].Name)
	assert.Equal(t, "implementation", levels[3].Name)
	for _, info := range levels {
		assert.NotEmpty(t, info.Description)
		assert.NotEmpty(t, info.Questions)
		assert.NotEmpty(t, info.Focus)
	}
}

func TestLevelGuidance(t *testing.T) {
	g := LevelIsolation.Guidance()
	assert.Contains(t, g, "discrete parts")
	assert.Contains(t, g, "Questions to consider")
}
