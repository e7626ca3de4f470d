package common

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a human readable console logger at the given level.
func NewLogger(out io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}
