package logging

import (
	"github.com/hashicorp/go-hclog"
	"io"
	"os"
)

// New returns the root logger for a binary. Unknown levels fall back to info.
func New(name, level string) hclog.Logger {
	return NewWithOutput(name, level, os.Stderr)
}

func NewWithOutput(name, level string, out io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  lvl,
		Output: out,
		Color:  hclog.AutoColor,
	})
}
