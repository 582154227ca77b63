package main

import (
	"io"
	"log"
)

// cliLogger implements calculation.Logger over the standard logger. Debug lines are
// only written in verbose mode.
type cliLogger struct {
	l     *log.Logger
	debug bool
}

func newCLILogger(w io.Writer, verbose bool) *cliLogger {
	return &cliLogger{l: log.New(w, "", log.LstdFlags), debug: verbose}
}

func (c *cliLogger) Debugf(format string, args ...any) {
	if c.debug {
		c.l.Printf("DEBUG "+format, args...)
	}
}

func (c *cliLogger) Infof(format string, args ...any)  { c.l.Printf("INFO "+format, args...) }
func (c *cliLogger) Warnf(format string, args ...any)  { c.l.Printf("WARN "+format, args...) }
func (c *cliLogger) Errorf(format string, args ...any) { c.l.Printf("ERROR "+format, args...) }
