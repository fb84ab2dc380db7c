package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, InfoLogger)
	assert.NotNil(t, ErrorLogger)
	assert.NotNil(t, DebugLogger)
}

func TestInfof(t *testing.T) {
	var buf bytes.Buffer
	Init()
	InfoLogger = log.New(&buf, "INFO: ", 0)

	Infof("processed event %s", "subscription_updated")

	assert.Contains(t, buf.String(), "processed event subscription_updated")
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	Init()
	ErrorLogger = log.New(&buf, "ERROR: ", 0)

	Errorf("store write failed: %v", assert.AnError)

	assert.Contains(t, buf.String(), "store write failed")
}

func TestLogBeforeInit(t *testing.T) {
	InfoLogger = nil
	ErrorLogger = nil
	DebugLogger = nil

	assert.NotPanics(t, func() {
		Info("lazy init")
	})
	assert.NotNil(t, InfoLogger)
}
