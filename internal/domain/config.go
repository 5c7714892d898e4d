package domain

// ComponentConfig describes one component type in the registry.
type ComponentConfig struct {
	Label        string   `json:"label,omitempty" yaml:"label"`
	Category     string   `json:"category,omitempty" yaml:"category"`
	DefaultProps Props    `json:"defaultProps,omitempty" yaml:"defaultProps"`
	Zones        []string `json:"zones,omitempty" yaml:"zones"` // nested drop zone names
}

// Config is the static component registry handed to the reducer. The
// reducer reads it and never mutates it.
type Config struct {
	Components map[string]ComponentConfig `json:"components" yaml:"components"`
}

// DefaultProps returns a copy of the default props for componentType.
// Unknown types yield an empty map.
func (c Config) DefaultProps(componentType string) Props {
	out := Props{}
	comp, ok := c.Components[componentType]
	if !ok {
		return out
	}
	for k, v := range comp.DefaultProps {
		out[k] = v
	}
	return out
}

// Has reports whether componentType is registered.
func (c Config) Has(componentType string) bool {
	_, ok := c.Components[componentType]
	return ok
}

// Merge returns a new Config with other's components layered over c's.
func (c Config) Merge(other Config) Config {
	out := Config{Components: make(map[string]ComponentConfig, len(c.Components)+len(other.Components))}
	for k, v := range c.Components {
		out.Components[k] = v
	}
	for k, v := range other.Components {
		out.Components[k] = v
	}
	return out
}
