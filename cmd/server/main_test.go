package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/seldo/newww/configs"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	assert.NotNil(t, serve.Flags().Lookup("migrate"))

	for _, name := range []string{"up", "down", "version"} {
		sub, _, err := root.Find([]string{"migrate", name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	steps := down.Flags().Lookup("steps")
	require.NotNil(t, steps)
	assert.Equal(t, "1", steps.DefValue)
}

func TestNewLogger(t *testing.T) {
	logger := newLogger(&config.LogConfig{Level: "debug", Format: "text"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger = newLogger(&config.LogConfig{Level: "loud", Format: "json"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}
