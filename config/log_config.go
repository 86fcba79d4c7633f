package config

// LokiConfig points the logger at a Loki push endpoint and the static
// labels to attach to every shipped entry. A zero-value Address
// disables the Loki hook.
type LokiConfig struct {
	Address string            `mapstructure:"address"`
	Labels  map[string]string `mapstructure:"labels"`
}

// LogConfig configures logrus: the minimum level, the formatter
// ("json" selects JSON; "text" or anything else selects text), and an
// optional Loki shipping hook.
type LogConfig struct {
	Formatter string     `mapstructure:"formatter"`
	Level     string     `mapstructure:"level"`
	Loki      LokiConfig `mapstructure:"loki"`
}
