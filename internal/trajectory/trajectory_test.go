package trajectory_test

import (
	"strings"
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVSkipsHeaderAndSteps(t *testing.T) {
	data := "time,x,y,z\n0.0,1,2,3\n0.5,4,5,6\n1.0,7,8,9\n"
	r, err := trajectory.LoadCSV(strings.NewReader(data))
	require.NoError(t, err)

	pos, ok := r.Next(0.0)
	require.True(t, ok)
	assert.Equal(t, 1.0, pos.X)

	pos, ok = r.Next(0.6)
	require.True(t, ok)
	assert.Equal(t, 4.0, pos.X)

	pos, ok = r.Next(2.0)
	assert.False(t, ok)
	assert.Equal(t, 7.0, pos.X)
}

func TestStaticAlwaysReturnsSamePosition(t *testing.T) {
	s := trajectory.Static{}
	_, ok := s.Next(100)
	assert.True(t, ok)
}
