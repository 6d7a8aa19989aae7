package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
)

func TestRunRefusesDefaultSecretInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg := config.Load()
	cfg.Env = "production"
	require.True(t, cfg.UsesDefaultSecret())

	assert.ErrorIs(t, run(cfg), errDefaultSecret)
}

func TestRunReturnsStoreError(t *testing.T) {
	cfg := config.Load()
	cfg.Env = "development"
	cfg.DB = config.DBConfig{Driver: "oracle"}

	err := run(cfg)
	require.Error(t, err)
	var ce *database.ConnectionError
	assert.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "relational store unavailable")
}
