package config

import (
	"github.com/sipeed/cmdsync/pkg/logger"
	"github.com/sipeed/cmdsync/pkg/redaction"
)

// Apply configures the process-wide logger from the log section.
func (l LogConfig) Apply() error {
	level, err := logger.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetRedactionEnabled(l.Redact)
	if l.Redact {
		logger.ConfigureRedaction(redaction.DefaultConfig())
	}

	if l.File == "" {
		logger.DisableFileLogging()
		return nil
	}
	return logger.EnableFileLogging(expandHome(l.File))
}
