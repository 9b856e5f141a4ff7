// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the loggers of a node.
type Config struct {
	// Directory holds the rotated log files. No file is written if it is
	// empty.
	Directory string `json:"directory" yaml:"directory"`

	LogLevel     logging.Level `json:"logLevel" yaml:"logLevel"`
	DisplayLevel logging.Level `json:"displayLevel" yaml:"displayLevel"`

	MaxSize  int  `json:"maxSize" yaml:"maxSize"`   // megabytes
	MaxAge   int  `json:"maxAge" yaml:"maxAge"`     // days
	MaxFiles int  `json:"maxFiles" yaml:"maxFiles"` // files
	Compress bool `json:"compress" yaml:"compress"`

	// DisableDisplay mutes stderr output.
	DisableDisplay bool `json:"disableDisplay" yaml:"disableDisplay"`
}

func NewDefaultConfig() Config {
	return Config{
		LogLevel:     logging.Info,
		DisplayLevel: logging.Info,
		MaxSize:      8,
		MaxAge:       0,
		MaxFiles:     7,
		Compress:     false,
	}
}

// New returns a logger named [name] that writes colored output to stderr
// and JSON lines to a rotated file in [config.Directory].
func New(name string, config Config) logging.Logger {
	var consoleWriter io.WriteCloser = os.Stderr
	if config.DisableDisplay {
		consoleWriter = discardWriteCloser{io.Discard}
	}
	consoleCore := logging.NewWrappedCore(config.DisplayLevel, consoleWriter, logging.Colors.ConsoleEncoder())
	consoleCore.WriterDisabled = config.DisableDisplay
	if config.Directory == "" {
		return logging.NewLogger(name, consoleCore)
	}

	rw := &lumberjack.Logger{
		Filename:   filepath.Join(config.Directory, name+".log"),
		MaxSize:    config.MaxSize,
		MaxAge:     config.MaxAge,
		MaxBackups: config.MaxFiles,
		Compress:   config.Compress,
	}
	fileCore := logging.NewWrappedCore(config.LogLevel, rw, logging.JSON.FileEncoder())
	return logging.NewLogger(name, consoleCore, fileCore)
}

type discardWriteCloser struct {
	io.Writer
}

func (discardWriteCloser) Close() error {
	return nil
}
