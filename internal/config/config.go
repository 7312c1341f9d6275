// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the covered configuration file.
//
// Configuration files are YAML documents validated against an embedded CUE
// schema before being decoded.
//
package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schema []byte

// Config is the top-level configuration.
//
type Config struct {
	Simulation Simulation `yaml:"simulation" json:"simulation"`
	Database   Database   `yaml:"database" json:"database"`
	Log        Log        `yaml:"log" json:"log"`
}

// Simulation holds simulator settings.
//
type Simulation struct {
	// MaxIterations limits the number of statement walks per timestep.
	MaxIterations int `yaml:"maxIterations" json:"maxIterations"`
	// Trace logs every executed statement.
	Trace bool `yaml:"trace" json:"trace"`
}

// Database holds coverage database settings.
//
type Database struct {
	ValueOnly   bool `yaml:"valueOnly" json:"valueOnly"`
	StrictMerge bool `yaml:"strictMerge" json:"strictMerge"`
}

// Log holds logger settings.
//
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default values.
const (
	DefaultMaxIterations = 100000
	DefaultLevel         = "info"
	DefaultFormat        = "text"
)

// DefaultConfig returns the default configuration.
//
func DefaultConfig() *Config {
	c := &Config{Database: Database{StrictMerge: true}}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Simulation.MaxIterations == 0 {
		c.Simulation.MaxIterations = DefaultMaxIterations
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultFormat
	}
}

// Load looks for a configuration file in the following places and loads the
// first one found:
//
//	./covered.yaml
//	./.covered.yaml
//	<dir>/covered.yaml
//	~/.config/covered/config.yaml
//
// It returns DefaultConfig if none is found.
//
func Load(dir string) (*Config, error) {
	paths := []string{"covered.yaml", ".covered.yaml"}
	if dir != "" && dir != "." {
		paths = append(paths, filepath.Join(dir, "covered.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "covered", "config.yaml"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return DefaultConfig(), nil
}

// LoadFile loads the configuration file at path.
//
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c, err := Parse(data)
	return c, errors.Wrapf(err, "config %s", path)
}

// Parse parses and validates a YAML configuration. Missing settings get
// their default value.
//
func Parse(data []byte) (*Config, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	if err := validate(raw); err != nil {
		return nil, err
	}
	c := &Config{Database: Database{StrictMerge: true}}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	c.applyDefaults()
	return c, nil
}

func validate(raw map[string]interface{}) error {
	js, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "validate")
	}
	ctx := cuecontext.New()
	s := ctx.CompileBytes(schema)
	if s.Err() != nil {
		return errors.Wrap(s.Err(), "compile schema")
	}
	v := ctx.CompileBytes(js)
	if v.Err() != nil {
		return errors.Wrap(v.Err(), "validate")
	}
	err = s.LookupPath(cue.ParsePath("#Config")).Unify(v).Validate(cue.Concrete(true))
	if err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return errors.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Save writes c to path in YAML format.
//
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}

// Logger returns a logger configured after c.
//
func (c *Config) Logger() (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	l := logrus.New()
	l.SetLevel(lvl)
	switch c.Log.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	if c.Simulation.Trace {
		l.SetLevel(logrus.TraceLevel)
	}
	return l, nil
}
