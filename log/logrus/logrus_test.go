package logrus

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/synccache"
)

func TestFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)

	lg := New(l)
	lg.Debug("dropped", synccache.Fields{"key": "a"})
	lg.Warn("error parsing session storage value", synccache.Fields{"key": "theme"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "theme", line["key"])
	assert.Equal(t, "synccache", line["component"])
}
