package plugins

import (
	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
)

// ─────────────────────────────────────────────────────────────
// Built-in components
// ─────────────────────────────────────────────────────────────

// component implements service.ComponentPlugin for a component whose
// definition is fixed at compile time.
type component struct {
	typ string
	def domain.ComponentConfig
}

func (c *component) ComponentType() string { return c.typ }

// Definition returns a copy so callers cannot edit the built-in defaults.
func (c *component) Definition() domain.ComponentConfig {
	def := c.def
	def.DefaultProps = make(domain.Props, len(c.def.DefaultProps))
	for k, v := range c.def.DefaultProps {
		def.DefaultProps[k] = v
	}
	def.Zones = append([]string(nil), c.def.Zones...)
	return def
}

func NewHeadingPlugin() service.ComponentPlugin {
	return &component{typ: "Heading1", def: domain.ComponentConfig{
		Label:        "Heading",
		Category:     "typography",
		DefaultProps: domain.Props{"title": "Heading", "align": "left"},
	}}
}

func NewTextPlugin() service.ComponentPlugin {
	return &component{typ: "Text", def: domain.ComponentConfig{
		Label:        "Text",
		Category:     "typography",
		DefaultProps: domain.Props{"text": "Text", "size": "m"},
	}}
}

func NewButtonPlugin() service.ComponentPlugin {
	return &component{typ: "Button", def: domain.ComponentConfig{
		Label:        "Button",
		Category:     "actions",
		DefaultProps: domain.Props{"label": "Learn more", "href": "#", "variant": "primary"},
	}}
}

func NewMediaPlugin() service.ComponentPlugin {
	return &component{typ: "Media", def: domain.ComponentConfig{
		Label:        "Media",
		Category:     "media",
		DefaultProps: domain.Props{"src": "", "alt": "", "fit": "cover"},
	}}
}

// Layout components own nested zones named in Zones.

func NewCardPlugin() service.ComponentPlugin {
	return &component{typ: "Card", def: domain.ComponentConfig{
		Label:        "Card",
		Category:     "layout",
		DefaultProps: domain.Props{"padding": "m", "shadow": true},
		Zones:        []string{"body"},
	}}
}

func NewContainerPlugin() service.ComponentPlugin {
	return &component{typ: "Container", def: domain.ComponentConfig{
		Label:        "Container",
		Category:     "layout",
		DefaultProps: domain.Props{"maxWidth": 1280, "gap": 16},
		Zones:        []string{"items"},
	}}
}

func NewGridPlugin() service.ComponentPlugin {
	return &component{typ: "Grid", def: domain.ComponentConfig{
		Label:        "Grid",
		Category:     "layout",
		DefaultProps: domain.Props{"columns": 2, "gap": 24},
		Zones:        []string{"left", "right"},
	}}
}

// Builtins returns every built-in component.
func Builtins() []service.ComponentPlugin {
	return []service.ComponentPlugin{
		NewHeadingPlugin(),
		NewTextPlugin(),
		NewButtonPlugin(),
		NewMediaPlugin(),
		NewCardPlugin(),
		NewContainerPlugin(),
		NewGridPlugin(),
	}
}

// RegisterBuiltins registers every built-in component with r.
func RegisterBuiltins(r *service.ComponentRegistry) {
	for _, p := range Builtins() {
		r.Register(p)
	}
}
