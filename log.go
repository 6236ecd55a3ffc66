package cursor

import (
	"sync"

	log "github.com/xuperchain/log15"
)

var (
	logOnce sync.Once
	logger  log.Logger
)

// Logger returns the module logger. It discards everything until
// SetLogHandler installs a handler.
func Logger() log.Logger {
	logOnce.Do(func() {
		logger = log.New("module", "cursor")
		logger.SetHandler(log.DiscardHandler())
	})
	return logger
}

// SetLogHandler routes module log records to h.
func SetLogHandler(h log.Handler) {
	Logger().SetHandler(h)
}
