package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresets(t *testing.T) {
	data := []byte(`
log-level: debug
presets:
  happy:
    weights:
      Smile: 80
      Blink: 10
  surprised:
    weights:
      BrowsUp: 100
`)

	presets, err := ParsePresets(data)
	require.NoError(t, err)
	require.Len(t, presets, 2)

	happy := presets["happy"]
	assert.Equal(t, []string{"Blink", "Smile"}, happy.Names())
	assert.InDelta(t, 80.0, happy.Weights["Smile"], 1e-9)
	assert.Equal(t, []string{"BrowsUp"}, presets["surprised"].Names())
}

func TestParsePresets_Empty(t *testing.T) {
	presets, err := ParsePresets([]byte("log-level: info\n"))
	require.NoError(t, err)
	assert.NotNil(t, presets)
	assert.Empty(t, presets)
}

func TestParsePresets_Malformed(t *testing.T) {
	_, err := ParsePresets([]byte("presets: [unclosed"))
	require.Error(t, err)
}

func TestPresets_Validate(t *testing.T) {
	tests := []struct {
		name    string
		presets Presets
		errMsg  string
	}{
		{"valid", Presets{"happy_1": {Weights: map[string]float64{"Smile": 50}}}, ""},
		{"bad name", Presets{"1happy": {Weights: map[string]float64{"Smile": 50}}}, "name is invalid"},
		{"no weights", Presets{"happy": {}}, "weights must not be empty"},
		{"blank shape", Presets{"happy": {Weights: map[string]float64{"  ": 50}}}, "blend-shape name must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.presets.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}

			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestPresets_Get(t *testing.T) {
	presets := Presets{
		"sad":   {Weights: map[string]float64{"Frown": 60}},
		"happy": {Weights: map[string]float64{"Smile": 80}},
	}

	p, err := presets.Get("happy")
	require.NoError(t, err)
	assert.InDelta(t, 80.0, p.Weights["Smile"], 1e-9)

	_, err = presets.Get("angry")
	assert.ErrorContains(t, err, "available: happy, sad")

	_, err = Presets{}.Get("angry")
	assert.ErrorContains(t, err, "no presets configured")
}

func TestLoadPresets(t *testing.T) {
	p := writeTempConfig(t, "presets:\n  happy:\n    weights:\n      Smile: 80\n")

	presets, err := LoadPresets(p)
	require.NoError(t, err)
	assert.Contains(t, presets, "happy")

	presets, err = LoadPresets("")
	require.NoError(t, err)
	assert.Empty(t, presets)

	_, err = LoadPresets("/nonexistent/blendkey-presets-12345.yaml")
	assert.Error(t, err)
}
