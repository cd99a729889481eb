// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/helix-labs/feeminter/pebble"
	"github.com/helix-labs/feeminter/server"
	"github.com/helix-labs/feeminter/trace"
)

const (
	DefaultHTTPHost = "127.0.0.1"
	DefaultHTTPPort = 9650
	DefaultDataDir  = ".feeminter"
)

var (
	ErrMissingRegistry = errors.New("registry path is required")
	ErrMissingDataDir  = errors.New("data directory is required")
)

type Config struct {
	// API
	HTTPHost        string            `json:"httpHost"`
	HTTPPort        uint16            `json:"httpPort"`
	HTTP            server.HTTPConfig `json:"http"`
	AllowedOrigins  []string          `json:"allowedOrigins"`
	AllowedHosts    []string          `json:"allowedHosts"`
	ShutdownTimeout time.Duration     `json:"shutdownTimeout"`

	// Ledger
	DataDir      string        `json:"dataDir"`
	RegistryPath string        `json:"registryPath"`
	ChainID      uint64        `json:"chainId"`
	Pebble       pebble.Config `json:"pebble"`

	// Logging
	LogLevel logging.Level `json:"logLevel"`
	// LogDir enables a rotated log file next to stdout when set.
	LogDir        string `json:"logDir"`
	LogMaxSize    int    `json:"logMaxSize"` // megabytes
	LogMaxBackups int    `json:"logMaxBackups"`
	LogMaxAge     int    `json:"logMaxAge"` // days
	LogCompress   bool   `json:"logCompress"`

	// Tracing
	Trace trace.Config `json:"trace"`
}

func New(b []byte) (*Config, error) {
	c := &Config{
		HTTPHost:        DefaultHTTPHost,
		HTTPPort:        DefaultHTTPPort,
		HTTP:            server.NewDefaultHTTPConfig(),
		AllowedOrigins:  []string{"*"},
		AllowedHosts:    []string{"localhost"},
		ShutdownTimeout: 10 * time.Second,
		DataDir:         DefaultDataDir,
		Pebble:          pebble.NewDefaultConfig(),
		LogLevel:        logging.Info,
		LogMaxSize:      8,
		LogMaxBackups:   7,
		LogMaxAge:       28,
		LogCompress:     true,
		Trace:           trace.NewDefaultConfig(),
	}

	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, err
		}
	}

	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := New(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Verify() error {
	if c.RegistryPath == "" {
		return ErrMissingRegistry
	}
	if c.DataDir == "" {
		return ErrMissingDataDir
	}
	if c.Trace.Enabled && c.Trace.Endpoint == "" {
		return trace.ErrMissingEndpoint
	}
	return nil
}

// HTTPAddress is the listen address of the API server.
func (c *Config) HTTPAddress() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(int(c.HTTPPort)))
}
