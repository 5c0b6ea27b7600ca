// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package log sets up structured logging for the signer.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers.
var (
	App       zerolog.Logger
	Transport zerolog.Logger
	Keys      zerolog.Logger
	UI        zerolog.Logger
)

// Levels lists the accepted level names.
var Levels = []string{"debug", "info", "warn", "error"}

func init() {
	// Diagnostics go to stderr, stdout is kept for command output.
	Logger = NewConsoleLogger(os.Stderr, "info")
	initComponentLoggers()
}

// Init configures the global and component loggers to write to w.
func Init(w io.Writer, level string, jsonOutput bool) error {
	if _, err := ParseLevel(level); err != nil {
		return err
	}

	if jsonOutput {
		Logger = NewJSONLogger(w, level)
	} else {
		Logger = NewConsoleLogger(w, level)
	}

	initComponentLoggers()
	return nil
}

func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}

	lvl, _ := ParseLevel(level)
	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	lvl, _ := ParseLevel(level)
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names
// give info together with an error.
func ParseLevel(level string) (zerolog.Level, error) {
	switch level {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

func initComponentLoggers() {
	App = WithComponent("app")
	Transport = WithComponent("transport")
	Keys = WithComponent("keys")
	UI = WithComponent("ui")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
