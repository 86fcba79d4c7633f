package config

// HTTPConfig configures the admin HTTP surface.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind"`
}

// CrashReportConfig holds a path for crashed-service reports. The
// runtime does not read it: crash reports are kept in memory only
// (crashreport.MemoryStore) and are not written to disk.
type CrashReportConfig struct {
	Path string `mapstructure:"path"`
}

// RuntimeConfig is the top-level configuration for the actorkitd
// daemon: how many workers to start and how to expose its admin,
// metrics, and crash-reporting surfaces.
type RuntimeConfig struct {
	Config

	Env         string            `mapstructure:"env"`
	WorkerCount int               `mapstructure:"worker-count"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	CrashReport CrashReportConfig `mapstructure:"crashreport"`
	Log         LogConfig         `mapstructure:"log"`
	Service     ServiceConfig     `mapstructure:"service"`
}

// RuntimeConfigDefaults is the default set LoadConfigWithDefaults
// seeds before overlaying a config file or environment variables.
var RuntimeConfigDefaults = map[string]interface{}{
	"env":               "development",
	"worker-count":      4,
	"http.enabled":      true,
	"http.bind":         ":7100",
	"metrics.enabled":   true,
	"metrics.bind":      ":7101",
	"crashreport.path":  "actorkit-crashes.db",
	"log.formatter":     "text",
	"log.level":         "info",
	"log.loki.address":  "",
	"log.loki.labels":   map[string]string{"app": "actorkitd", "environment": "development"},
	"service.id":        "io.actorkit.runtime",
}
