// Package log wires this runtime's services to a single logrus
// standard logger, optionally shipping Info, Warn, Error and Fatal
// entries to Loki.
package log

import (
	"github.com/coreactor/actorkit/config"
	log "github.com/sirupsen/logrus"
	loki "github.com/yukitsune/lokirus"
)

// Initialize applies cfg to the logrus standard logger: the level (an
// unrecognized level is ignored, leaving the current level in place),
// the formatter ("json" selects log.JSONFormatter, anything else text
// with full timestamps), and, when cfg.Loki.Address is set, a hook
// shipping Info/Warn/Error/Fatal entries to that Loki endpoint.
func Initialize(cfg config.LogConfig) {
	if level, err := log.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}

	if cfg.Formatter == "json" {
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if cfg.Loki.Address == "" {
		return
	}

	opts := loki.NewLokiHookOptions().WithLevelMap(
		loki.LevelMap{log.PanicLevel: "critical"},
	).WithFormatter(
		&log.JSONFormatter{},
	).WithStaticLabels(
		loki.Labels(cfg.Loki.Labels),
	)

	hook := loki.NewLokiHookWithOpts(
		cfg.Loki.Address,
		opts,
		log.InfoLevel,
		log.WarnLevel,
		log.ErrorLevel,
		log.FatalLevel,
	)

	log.AddHook(hook)
}
