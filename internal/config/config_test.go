package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/config"
)

func TestDefaultsFillExpectedValues(t *testing.T) {
	cfg := config.Defaults()
	require.Equal(t, config.StorageMemory, cfg.Storage)
	require.Equal(t, 200*time.Millisecond, cfg.Heartbeat())
	require.Equal(t, 500*time.Millisecond, cfg.ElectionTimeoutMin())
	require.Equal(t, 1000*time.Millisecond, cfg.ElectionTimeoutMax())
}

func TestDurationHelpersConvertMillisecondFields(t *testing.T) {
	cfg := config.Config{
		HeartbeatMs:           50,
		ElectionTimeoutMsMin:  100,
		ElectionTimeoutMsMax:  200,
	}
	require.Equal(t, 50*time.Millisecond, cfg.Heartbeat())
	require.Equal(t, 100*time.Millisecond, cfg.ElectionTimeoutMin())
	require.Equal(t, 200*time.Millisecond, cfg.ElectionTimeoutMax())
}
