// Sets up zerolog as the process logger, human-readable console output or JSON lines
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Init(level, format string) {
	InitWriter(os.Stdout, level, format)
}

func InitWriter(out io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if strings.EqualFold(format, "json") {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}
