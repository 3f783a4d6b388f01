package testlog

import (
	"testing"

	"github.com/starbots/droidlink/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logger := logging.New("test")
	logger.Debug().Str("test", t.Name()).Msg("start")
}
