package conf

// DefaultConfig maps dotted config keys to their default values.
type DefaultConfig map[string]any
