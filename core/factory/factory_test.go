package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Order   int
	Timeout time.Duration
}

type sampleConf struct {
	Order   int           `json:"order"`
	Timeout time.Duration `json:"timeout"`
}

func sampleFactory(conf map[string]any) (*sample, error) {
	var c sampleConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sample{Order: c.Order, Timeout: c.Timeout}, nil
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	require.NoError(t, reg.Register("s", sampleFactory))

	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"order": 3, "timeout": "1500ms"}})
	require.NoError(t, err)
	assert.Equal(t, 3, inst.Order)
	assert.Equal(t, 1500*time.Millisecond, inst.Timeout)
}

// Values read from environment variables arrive as strings.
func TestDecode_WeakTypes(t *testing.T) {
	var c sampleConf
	require.NoError(t, Decode(map[string]any{"order": "2"}, &c))
	assert.Equal(t, 2, c.Order)

	assert.Error(t, Decode(map[string]any{"order": "two"}, &c))
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("x", func(map[string]any) (int, error) { return 2, nil }), "duplicate")
	assert.Error(t, reg.Register("y", nil), "nil factory")

	_, err := reg.Create(ModuleConfig{Type: "z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[x]")
	assert.Equal(t, []string{"x"}, reg.Names())
}
