package log

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLevelAffectsExistingSubLoggers(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	// Sub-logger created before the level change, like package-scope
	// loggers are
	sub := GetLogger("test")

	SetLevel("error")
	if sub.Debug().Enabled() {
		t.Error("debug should be filtered at error level")
	}
	if Info().Enabled() {
		t.Error("info should be filtered at error level")
	}
	if !sub.Error().Enabled() {
		t.Error("error should pass at error level")
	}

	SetLevel("debug")
	if !sub.Debug().Enabled() {
		t.Error("existing sub-logger should pick up the lowered level")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"warn":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"fatal":    zerolog.FatalLevel,
		"DEBUG":    zerolog.DebugLevel,
		"nonsense": zerolog.InfoLevel,
		"":         zerolog.InfoLevel,
	}
	for input, want := range cases {
		if got := parseLogLevel(input); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
