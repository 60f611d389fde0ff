package logrusadapter

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLogrusLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)

	adapter := New(base)
	adapter.Debugf("checked key %s", "client")
	adapter.Errorf("store failed: %s", "timeout")

	out := buf.String()
	assert.Contains(t, out, "checked key client")
	assert.Contains(t, out, "store failed: timeout")
}

func TestLogrusLoggerNilFallsBackToNew(t *testing.T) {
	assert.NotNil(t, New(nil))
}
