package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/strata/internal/errors"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Path
		wantErr bool
	}{
		{"empty is root", "", Path{}, false},
		{"root keyword", "root", Path{}, false},
		{"single index", "0", Path{0}, false},
		{"nested", "0,1,2", Path{0, 1, 2}, false},
		{"spaces tolerated", " 1 , 2 ", Path{1, 2}, false},
		{"negative index", "-1", nil, true},
		{"non-numeric", "0,a", nil, true},
		{"trailing comma", "0,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodePathSyntax, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestPathString(t *testing.T) {
	assert.Equal(t, "", Path{}.String())
	assert.Equal(t, "0,1,2", Path{0, 1, 2}.String())

	roundTrip, err := ParsePath(Path{3, 0, 7}.String())
	require.NoError(t, err)
	assert.True(t, roundTrip.Equal(Path{3, 0, 7}))
}

func TestPathRelations(t *testing.T) {
	p := Path{0, 1, 2}

	assert.True(t, p.HasPrefix(Path{}))
	assert.True(t, p.HasPrefix(Path{0, 1}))
	assert.True(t, p.HasPrefix(p))
	assert.False(t, p.HasPrefix(Path{1}))
	assert.False(t, p.HasPrefix(Path{0, 1, 2, 3}))

	assert.True(t, p.Parent().Equal(Path{0, 1}))
	assert.True(t, Path{}.Parent().IsRoot())
	assert.True(t, p.Child(4).Equal(Path{0, 1, 2, 4}))
}

func TestPathCloneIndependence(t *testing.T) {
	p := Path{0, 1}
	c := p.Clone()
	c[0] = 9
	assert.Equal(t, 0, p[0])
}
