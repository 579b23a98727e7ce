// Package logging builds the process logger.
package logging

import (
	"io"
	stdlog "log"

	"github.com/charmbracelet/log"
)

const prefix = "time-weather-mcp"

/*
New returns a logger writing to w. The stdio transport owns stdout, so callers
pass os.Stderr in every mode.
*/
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	}), nil
}

// Standard adapts logger for libraries that want a *log.Logger from the
// standard library, such as http.Server.ErrorLog.
func Standard(logger *log.Logger) *stdlog.Logger {
	return logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})
}
