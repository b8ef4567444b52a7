package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=x%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout evaluation must be deterministic per user")
	}
	assert.False(t, m.Enabled("canary", 0), "percentage rollout requires a user")
}

func TestDefaults(t *testing.T) {
	m := NewManager("")
	assert.True(t, m.Enabled(IPGeolocation, 0))
	assert.True(t, m.Enabled(MarkdownRendering, 0))

	m = NewManager(" IP_Geolocation = OFF ")
	assert.False(t, m.Enabled(IPGeolocation, 0))

	var nilManager *Manager
	assert.False(t, nilManager.Enabled(IPGeolocation, 1))
}

func TestList(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")
	flags := m.List(0)

	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.Name
	}
	assert.Equal(t, []string{IPGeolocation, MarkdownRendering, "x", "y", "z"}, names)
	assert.Equal(t, Flag{Name: "y", Value: "20%", Enabled: false}, flags[3])
}
