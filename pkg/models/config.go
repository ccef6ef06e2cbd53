package models

// InlineTaskSpec is a user-defined task from the config store. Unlike task
// document entries these have a fixed shape, since they are authored directly
// in rb's own config rather than in a host-format document.
type InlineTaskSpec struct {
	Label   string            `mapstructure:"label" yaml:"label" json:"label"`
	Type    string            `mapstructure:"type" yaml:"type,omitempty" json:"type,omitempty"`
	Command string            `mapstructure:"command" yaml:"command" json:"command"`
	Args    []string          `mapstructure:"args" yaml:"args,omitempty" json:"args,omitempty"`
	Cwd     string            `mapstructure:"cwd" yaml:"cwd,omitempty" json:"cwd,omitempty"`
	Env     map[string]string `mapstructure:"env" yaml:"env,omitempty" json:"env,omitempty"`
}

// InlineLaunchSpec is a user-defined launch configuration from the config
// store. Launch configurations are opaque maps keyed by "name", matching the
// document format.
type InlineLaunchSpec map[string]interface{}

// Name returns the raw name of an inline launch spec, or "" when absent.
func (s InlineLaunchSpec) Name() string {
	v, ok := s["name"]
	if !ok {
		return ""
	}
	name, ok := v.(string)
	if !ok {
		return ""
	}
	return name
}
