package plugins_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/plugins"
	"sitebuilder/internal/service"
)

func TestRegisterBuiltins(t *testing.T) {
	r := service.NewComponentRegistry(nil, nil)
	plugins.RegisterBuiltins(r)

	cfg := r.Config()
	for _, typ := range []string{"Heading1", "Text", "Button", "Media", "Card", "Container", "Grid"} {
		assert.True(t, cfg.Has(typ), typ)
	}
	assert.Equal(t, []string{"left", "right"}, cfg.Components["Grid"].Zones)
	assert.Equal(t, "Heading", cfg.DefaultProps("Heading1")["title"])
}

func TestBuiltinDefinitionsAreCopies(t *testing.T) {
	p := plugins.NewCardPlugin()

	def := p.Definition()
	def.DefaultProps["padding"] = "xl"
	def.Zones[0] = "changed"

	fresh := p.Definition()
	assert.Equal(t, "m", fresh.DefaultProps["padding"])
	assert.Equal(t, []string{"body"}, fresh.Zones)
}

func TestRegisterBuiltins_Twice(t *testing.T) {
	r := service.NewComponentRegistry(nil, nil)
	plugins.RegisterBuiltins(r)
	require.Panics(t, func() { plugins.RegisterBuiltins(r) })
}
