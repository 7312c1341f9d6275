// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package config_test

import (
	"path/filepath"
	"testing"

	"github.com/db47h/covered/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := config.DefaultConfig()
	assert.Equal(t, config.DefaultMaxIterations, c.Simulation.MaxIterations)
	assert.True(t, c.Database.StrictMerge)
	assert.False(t, c.Database.ValueOnly)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
}

func TestParse(t *testing.T) {
	c, err := config.Parse([]byte(`
simulation:
  maxIterations: 500
database:
  valueOnly: true
  strictMerge: false
log:
  level: debug
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, 500, c.Simulation.MaxIterations)
	assert.True(t, c.Database.ValueOnly)
	assert.False(t, c.Database.StrictMerge)
	assert.Equal(t, "debug", c.Log.Level)

	l, err := c.Logger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}

func TestParse_defaults(t *testing.T) {
	for _, in := range []string{"", "log:\n  level: warn\n"} {
		c, err := config.Parse([]byte(in))
		require.NoError(t, err, "%q", in)
		assert.Equal(t, config.DefaultMaxIterations, c.Simulation.MaxIterations)
		assert.True(t, c.Database.StrictMerge)
		assert.Equal(t, "text", c.Log.Format)
	}
}

func TestParse_invalid(t *testing.T) {
	data := []string{
		"simulation:\n  maxIterations: -1\n",
		"simulation:\n  maxIterations: lots\n",
		"log:\n  level: loud\n",
		"log:\n  format: xml\n",
		"unknown: 1\n",
		"database:\n  valueOnly: 3\n",
		"- a\n- b\n",
		"simulation: [\n",
	}
	for _, in := range data {
		_, err := config.Parse([]byte(in))
		assert.Error(t, err, "%q", in)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covered.yaml")
	c := config.DefaultConfig()
	c.Simulation.Trace = true
	c.Log.Level = "error"
	require.NoError(t, c.Save(path))

	in, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, in)

	l, err := in.Logger()
	require.NoError(t, err)
	assert.Equal(t, logrus.TraceLevel, l.GetLevel())
}

func TestLoadFile_missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
