package config

// Default values.
const (
	DefaultPageSize   = 1024
	DefaultBTreeOrder = 32
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			PageSize:   DefaultPageSize,
			BTreeOrder: DefaultBTreeOrder,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Trace: TraceConfig{
			Format: "text",
		},
	}
}
