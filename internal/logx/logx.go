// Package logx builds the structured logger used by cmd/executor and its
// collaborators. It wraps go.uber.org/zap with a custom zapcore.Encoder that
// colorizes the level token using the teacher's Go-brand ANSI palette
// (colors.go) when writing to a terminal, and falls back to plain text (the
// teacher's PlainFormatter behavior, formatters.go) when writing to a file
// or a non-tty.
package logx

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names accepted by --loglevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelError = "error"
)

// ParseLevel maps a --loglevel flag value to a zapcore.Level, defaulting to
// info for anything unrecognized.
func ParseLevel(s string) zapcore.Level {
	switch s {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// levelColor is the Go-brand ANSI palette from the teacher's colors.go,
// reused verbatim but repointed from "colorize a printed value" to
// "colorize a log level".
var levelColor = map[zapcore.Level]string{
	zapcore.DebugLevel: "\033[38;5;245m", // ColorSlateGray
	zapcore.InfoLevel:  "\033[38;5;33m",  // ColorGoBlue
	zapcore.WarnLevel:  "\033[38;5;220m", // ColorGoldenrod
	zapcore.ErrorLevel: "\033[38;5;160m", // ColorRed
	zapcore.DPanicLevel: "\033[38;5;131m", // ColorDarkRed
	zapcore.PanicLevel:  "\033[38;5;131m",
	zapcore.FatalLevel:  "\033[38;5;131m",
}

const colorReset = "\033[0m"

// colorLevelEncoder is the teacher's ANSIcolorFormatter.ApplyFormat logic,
// reapplied to zapcore's level-encoding hook instead of a pretty-printed
// value string.
func colorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	code, ok := levelColor[l]
	if !ok {
		enc.AppendString(l.CapitalString())
		return
	}
	enc.AppendString(code + l.CapitalString() + colorReset)
}

// New builds a logger. When logfile is empty, output goes to stderr with
// colorized levels (if stderr is a terminal); when logfile is set, output
// goes to that file with plain (uncolored) levels, matching the teacher's
// PlainFormatter fallback for non-interactive sinks.
func New(level zapcore.Level, logfile string) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	colorize := false
	if logfile == "" {
		sink = zapcore.AddSync(os.Stderr)
		colorize = isTerminal(os.Stderr)
	} else {
		f, err := os.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		sink = zapcore.AddSync(f)
	}

	if colorize {
		encCfg.EncodeLevel = colorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, level)
	return zap.New(core, zap.AddCaller()), nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
