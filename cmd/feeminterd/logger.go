// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/helix-labs/feeminter/config"
)

const loggerName = "feeminterd"

// newLogger writes to stdout and, when a log directory is configured, to a
// rotated file in it.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	cores := []logging.WrappedCore{
		logging.NewWrappedCore(cfg.LogLevel, os.Stdout, logging.Colors.ConsoleEncoder()),
	}
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o750); err != nil {
			return nil, err
		}
		rw := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, loggerName+".log"),
			MaxSize:    cfg.LogMaxSize,    // megabytes
			MaxAge:     cfg.LogMaxAge,     // days
			MaxBackups: cfg.LogMaxBackups, // files
			Compress:   cfg.LogCompress,
		}
		cores = append(cores, logging.NewWrappedCore(cfg.LogLevel, rw, logging.Plain.FileEncoder()))
	}
	return logging.NewLogger(loggerName, cores...), nil
}
