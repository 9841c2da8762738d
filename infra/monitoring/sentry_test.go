package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/emsga/core/monitoring"
)

func TestNewSentryMonitor_Disabled(t *testing.T) {
	m, err := NewSentryMonitor(coremon.Config{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitor_InvalidDSN(t *testing.T) {
	_, err := NewSentryMonitor(coremon.Config{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestSentryMonitor_Capture(t *testing.T) {
	m, err := NewSentryMonitor(coremon.Config{DSN: "http://public@127.0.0.1:1/1", Environment: "test"})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.CaptureException(errors.New("boom"), map[string]string{"stage": "inputs"})
		m.CaptureException(errors.New("boom"), nil)
		m.CaptureException(nil, nil)
		m.Flush(10 * time.Millisecond)
	})
}
