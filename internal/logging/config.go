package logging

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "DROIDLINK_LOG_LEVEL"
	EnvLogTimestamp = "DROIDLINK_LOG_TIMESTAMP"
	EnvLogNoColor   = "DROIDLINK_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var (
	configureOnce sync.Once
	base          zerolog.Logger
)

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		level := zerolog.InfoLevel
		timestamp := true
		if profile == ProfileTest {
			level = zerolog.DebugLevel
			timestamp = false
		}
		if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
			level = lvl
		}
		if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
			timestamp = v
		}

		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    noColor(),
		}
		ctx := zerolog.New(output).Level(level).With()
		if timestamp {
			ctx = ctx.Timestamp()
		}
		base = ctx.Logger()
	})
}

// New returns a child logger tagged with the component name. Configure
// must have run first; New calls ConfigureRuntime as a fallback.
func New(component string) zerolog.Logger {
	ConfigureRuntime()
	return base.With().Str("component", component).Logger()
}

func noColor() bool {
	v, ok := parseBool(os.Getenv(EnvLogNoColor))
	return ok && v
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "on":
		return true, true
	case "0", "f", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
