// Package logging builds the zerolog logger shared by the CLI and the TUI.
//
// The terminal belongs to the TUI, so records go to a JSON lines file that
// the Activity screen tails through package logtail.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// Options configure New.
type Options struct {
	Path    string // empty writes to Writer
	Writer  io.Writer
	Level   string
	Service string
}

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

// New returns a logger writing JSON records to opts.Path (or opts.Writer).
// The returned closer releases the file; it is a no-op for writers.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var (
		out    io.Writer = opts.Writer
		closer io.Closer = nopCloser{}
	)
	if path := strings.TrimSpace(opts.Path); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		out, closer = file, file
	}
	if out == nil {
		out = io.Discard
	}

	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}

	service := strings.TrimSpace(opts.Service)
	if service == "" {
		service = "coregym"
	}
	logger := zerolog.New(out).Level(level).With().
		Str("service", service).
		Timestamp().
		Logger()
	return logger, closer, nil
}

// ParseLevel maps a config level name to a zerolog level. Empty means info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
