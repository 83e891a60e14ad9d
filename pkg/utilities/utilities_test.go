package utilities

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestIDs(t *testing.T) {
	assert.Len(t, NewKSUID(), 27)
	assert.True(t, IsUUID(NewUUID()))
	assert.False(t, IsUUID("BIS-20250301-AB12CD"))
	assert.False(t, IsUUID("d9428888122b11e1b85c61cd3cbb3210"))

	require.NoError(t, SetSnowflakeNode(3))
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewSnowflakeID()
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Error(t, SetSnowflakeNode(5000))
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("verbose"))
}

func TestInitWithFile(t *testing.T) {
	lg, err := Init(Config{Level: "info", File: filepath.Join(t.TempDir(), "bis.log")})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
}
