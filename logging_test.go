package mizuchi

import (
	"testing"
	"time"

	"github.com/juju/loggo/v2"
)

func TestLogLevelMapping(t *testing.T) {
	tests := []struct {
		severity int
		want     loggo.Level
	}{
		{LogEmergency, loggo.CRITICAL},
		{LogAlert, loggo.CRITICAL},
		{LogCritical, loggo.CRITICAL},
		{LogError, loggo.ERROR},
		{LogNotice, loggo.WARNING},
		{LogWarning, loggo.WARNING},
		{LogInfo, loggo.INFO},
		{LogDebug, loggo.DEBUG},
		{99, loggo.INFO},
	}
	for _, test := range tests {
		if got := logLevel(test.severity); got != test.want {
			t.Errorf("logLevel(%d): got %v, want %v", test.severity, got, test.want)
		}
	}
}

func TestLogEntryFormat(t *testing.T) {
	entry := loggo.Entry{
		Level:     loggo.INFO,
		Module:    "mizuchi",
		Timestamp: time.Date(2023, 5, 17, 9, 30, 15, 250000000, time.UTC),
		Message:   "request served |req-1|",
	}
	want := "2023-05-17T09:30:15.250Z [INFO] [SDK] request served |req-1|"
	if got := formatLogEntry(entry); got != want {
		t.Errorf("formatLogEntry: got %q, want %q", got, want)
	}
}

func TestRequestLoggerID(t *testing.T) {
	if got := newRequestLogger("").RequestID(); got != "-" {
		t.Errorf("RequestID for an empty ID: got %q, want -", got)
	}
	if got := newRequestLogger("req-1").suffix("msg"); got != "msg |req-1|" {
		t.Errorf("Logged suffix: got %q, want msg |req-1|", got)
	}
}
