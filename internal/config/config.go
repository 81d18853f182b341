// Package config provides the Config collaborator the persistence core
// consults for deployment-site tunables that aren't the store's own
// business to decide: whether transactions are enabled, which resource
// attribute columns a deployment has declared, and a handful of
// numeric/time limits.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/TaniGit/gerbera/internal/core"
)

// Config is the read-only view of deployment settings the store
// depends on. Kept narrow and interface-typed so tests can supply a
// fixed value without loading a file.
type Config interface {
	// TransactionsEnabled reports whether the store should wrap
	// multi-statement operations in a driver transaction. Some
	// embedded deployments run against a storage engine that doesn't
	// support them.
	TransactionsEnabled() bool

	// ResourceAttributes is the ordered set of resource attribute
	// columns grb_cds_resource carries, matching what the dialect's
	// Emitter was constructed with.
	ResourceAttributes() []string

	// AutoscanOverlapCheck reports whether adding a new autoscan
	// directory should be rejected when it overlaps an existing one.
	AutoscanOverlapCheck() bool

	// BusyTimeout is the configured lock-wait bound. Neither the store
	// nor the bundled MySQL driver reads it.
	BusyTimeout() time.Duration
}

// fileConfig is the TOML-backed implementation.
type fileConfig struct {
	doc tomlDocument
}

type tomlDocument struct {
	Store struct {
		TransactionsEnabled  bool     `toml:"transactions_enabled"`
		ResourceAttributes   []string `toml:"resource_attributes"`
		AutoscanOverlapCheck bool     `toml:"autoscan_overlap_check"`
		BusyTimeoutSeconds   int      `toml:"busy_timeout_seconds"`
	} `toml:"store"`
}

// Load reads a TOML configuration file into a Config.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var doc tomlDocument
	if _, err := toml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}
	if len(doc.Store.ResourceAttributes) == 0 {
		doc.Store.ResourceAttributes = core.DefaultResourceAttributes()
	}
	if doc.Store.BusyTimeoutSeconds <= 0 {
		doc.Store.BusyTimeoutSeconds = 30
	}
	return &fileConfig{doc: doc}, nil
}

// Default returns a Config with the built-in defaults, for tests and
// for `cdsstore init` before a config file exists.
func Default() Config {
	var doc tomlDocument
	doc.Store.TransactionsEnabled = true
	doc.Store.ResourceAttributes = core.DefaultResourceAttributes()
	doc.Store.AutoscanOverlapCheck = true
	doc.Store.BusyTimeoutSeconds = 30
	return &fileConfig{doc: doc}
}

func (c *fileConfig) TransactionsEnabled() bool    { return c.doc.Store.TransactionsEnabled }
func (c *fileConfig) ResourceAttributes() []string { return c.doc.Store.ResourceAttributes }
func (c *fileConfig) AutoscanOverlapCheck() bool   { return c.doc.Store.AutoscanOverlapCheck }
func (c *fileConfig) BusyTimeout() time.Duration {
	return time.Duration(c.doc.Store.BusyTimeoutSeconds) * time.Second
}
