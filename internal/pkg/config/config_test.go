package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("REWARD_VERIFY_HIGH", "20")
	t.Setenv("REWARD_SUBMIT_BASE", "3")
	t.Setenv("REWARD_MAX_OVERRIDE", "250")
	t.Setenv("JOBQUEUE_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Verification.HighPriority)
	assert.Equal(t, 10, cfg.Verification.Base)
	assert.Equal(t, 3, cfg.Submission.Base)
	assert.Equal(t, 250, cfg.MaxOverride)
	assert.Equal(t, 8, cfg.QueueWorkers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("REWARD_POINTS_PER_LEVEL", "many")
	_, err := Load()
	assert.Error(t, err)
}
