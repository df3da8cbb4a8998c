package logger

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesLevel(t *testing.T) {
	log, closer := New(Options{Level: "DEBUG"})
	defer closer.Close()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log, _ = New(Options{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNew_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log, closer := New(Options{Level: "info", File: path, JSON: true})
	log.Info("hello")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := logrus.New()
	assert.Same(t, l, OrDiscard(l))
}
