package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "ego":  {"position": 0, "velocity": 20},
  "lead": {"position": 80, "velocity": 22},
  "ado_actions": [0.5, -1, {"acceleration": -3, "duration": 0.3}]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 20.0, s.Ego.Velocity)
	assert.Equal(t, 80.0, s.Lead.Position)
	require.Len(t, s.Actions, 3)
	assert.Equal(t, Action{Acceleration: -3, Duration: 0.3}, s.Actions[2])
	assert.Nil(t, s.DesiredSpeed)

	assert.Equal(t, []float64{0.5, -1, -3, -3, -3}, s.LeadAccelerations(0.1))
	assert.InDelta(t, 0.5, s.Duration(0.1), 1e-9)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"ego": `},
		{"missing ego", `{"lead": {}, "ado_actions": []}`},
		{"missing lead", `{"ego": {}, "ado_actions": []}`},
		{"missing actions", `{"ego": {}, "lead": {}}`},
		{"bad action", `{"ego": {}, "lead": {}, "ado_actions": ["fast"]}`},
		{"action without acceleration", `{"ego": {}, "lead": {}, "ado_actions": [{"duration": 1}]}`},
		{"negative duration", `{"ego": {}, "lead": {}, "ado_actions": [{"acceleration": 1, "duration": -1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseOverrides(t *testing.T) {
	s, err := Parse([]byte(`{"name": "cut-in", "desired_speed": 30,
		"ego": {"position": 0, "velocity": 0}, "lead": {"position": 10, "velocity": 0},
		"ado_actions": []}`))
	require.NoError(t, err)

	assert.Equal(t, "cut-in", s.Name)
	require.NotNil(t, s.DesiredSpeed)
	assert.Equal(t, 30.0, *s.DesiredSpeed)
	assert.Empty(t, s.LeadAccelerations(0.1))
}

func TestActionTicks(t *testing.T) {
	assert.Equal(t, 1, Action{Acceleration: 1}.Ticks(0.1))
	assert.Equal(t, 20, Action{Acceleration: 1, Duration: 2}.Ticks(0.1))
	assert.Equal(t, 1, Action{Acceleration: 1, Duration: 0.01}.Ticks(0.1))
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "highway_follow.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "highway_follow", s.Basename())
	assert.Equal(t, "highway_follow", s.Name)

	out := filepath.Join(dir, "copy.json")
	require.NoError(t, Save(out, s))

	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, s.Actions, again.Actions)
	assert.Equal(t, s.Ego, again.Ego)
	assert.Equal(t, "highway_follow", again.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
