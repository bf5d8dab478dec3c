package config

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithEnv_ShippedConfig(t *testing.T) {
	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)
	applyDefaults(cfg)

	require.NotNil(t, cfg.Share)
	shareURL, err := url.Parse(cfg.Share.BaseURL)
	require.NoError(t, err)
	// share links append /streak/{uid} themselves
	assert.Contains(t, []string{"", "/"}, shareURL.Path)

	require.NotNil(t, cfg.Streak)
	assert.Equal(t, 3, cfg.Streak.Milestones[0])
}
