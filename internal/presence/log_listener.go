package presence

import "github.com/rs/zerolog"

// LogListener writes presence transitions to a zerolog logger.
type LogListener struct {
	Logger zerolog.Logger
}

// NewLogListener creates a listener that logs through logger.
func NewLogListener(logger zerolog.Logger) *LogListener {
	return &LogListener{Logger: logger}
}

// SystemOnline logs a system seen for the first time since it was last absent.
func (l *LogListener) SystemOnline(rec Record) {
	l.Logger.Info().
		Str("system_id", rec.ID).
		Str("system_name", rec.Name).
		Str("system_type", rec.Kind).
		Msgf("New system came online: %s (%s)", rec.Name, rec.ID)
}

// SystemOffline logs a system dropped by the sweeper.
func (l *LogListener) SystemOffline(rec Record) {
	l.Logger.Info().
		Str("system_id", rec.ID).
		Time("last_ping", rec.LastPing).
		Msgf("System %s went offline (timeout)", rec.ID)
}
