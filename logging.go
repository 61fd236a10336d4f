package mizuchi

import (
	"fmt"
	"os"

	"github.com/juju/loggo/v2"
)

// logger is the module logger for the SDK internals.
var logger = loggo.GetLogger("mizuchi")

// Syslog numeric severity levels, as passed by the runtime on the command
// line.
const (
	LogEmergency = iota
	LogAlert
	LogCritical
	LogError
	LogNotice
	LogWarning
	LogInfo
	LogDebug
)

// logLevel maps a syslog numeric severity to the nearest logging level.
func logLevel(severity int) loggo.Level {
	switch severity {
	case LogEmergency, LogAlert, LogCritical:
		return loggo.CRITICAL
	case LogError:
		return loggo.ERROR
	case LogNotice, LogWarning:
		return loggo.WARNING
	case LogInfo:
		return loggo.INFO
	case LogDebug:
		return loggo.DEBUG
	default:
		return loggo.INFO
	}
}

// setupLogging configures the SDK log output. Lines use the framework format,
// with a UTC timestamp and an "[SDK]" tag. Debug mode lowers the level to
// DEBUG regardless of the severity value.
func setupLogging(severity int, debug bool) {
	level := logLevel(severity)
	if debug {
		level = loggo.DEBUG
	}
	loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(os.Stdout, formatLogEntry))
	logger.SetLogLevel(level)
}

func formatLogEntry(entry loggo.Entry) string {
	ts := entry.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")
	return fmt.Sprintf("%s [%s] [SDK] %s", ts, entry.Level, entry.Message)
}

// A RequestLogger tags every log line with the ID of the request being
// serviced, so log parsers can correlate lines across concurrent requests.
type RequestLogger struct {
	rid string
}

// newRequestLogger creates a logger for a request ID. An empty ID is replaced
// by a placeholder to keep the log format parseable.
func newRequestLogger(rid string) RequestLogger {
	if rid == "" {
		rid = "-"
	}
	return RequestLogger{rid: rid}
}

// RequestID returns the ID the logger tags lines with.
func (l RequestLogger) RequestID() string { return l.rid }

func (l RequestLogger) suffix(message string) string { return message + " |" + l.rid + "|" }

func (l RequestLogger) Debugf(format string, args ...any) {
	logger.Debugf("%s", l.suffix(fmt.Sprintf(format, args...)))
}

func (l RequestLogger) Infof(format string, args ...any) {
	logger.Infof("%s", l.suffix(fmt.Sprintf(format, args...)))
}

func (l RequestLogger) Warningf(format string, args ...any) {
	logger.Warningf("%s", l.suffix(fmt.Sprintf(format, args...)))
}

func (l RequestLogger) Errorf(format string, args ...any) {
	logger.Errorf("%s", l.suffix(fmt.Sprintf(format, args...)))
}

func (l RequestLogger) Criticalf(format string, args ...any) {
	logger.Criticalf("%s", l.suffix(fmt.Sprintf(format, args...)))
}

// Logf logs a message with a syslog numeric severity.
func (l RequestLogger) Logf(severity int, format string, args ...any) {
	logger.Logf(logLevel(severity), "%s", l.suffix(fmt.Sprintf(format, args...)))
}
