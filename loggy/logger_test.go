package loggy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSameLogger(t *testing.T) {
	assert.Same(t, Get(1), Get(1))
	assert.NotSame(t, Get(1), Get(2))
}

func TestLogfFormat(t *testing.T) {

	var buf bytes.Buffer
	l := Get(42)
	l.SetOutput(&buf)

	l.Logf("mounted %s", "disk.img")
	l.Errorf("bad block %d", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INFO")
	assert.Contains(t, lines[0], "mounted disk.img")
	assert.Contains(t, lines[1], "ERROR")
	assert.Contains(t, lines[1], "bad block 7")
}

func TestDiscardByDefault(t *testing.T) {
	// no log folder configured: logging must be a no-op, not a crash
	l := NewLogger(99)
	l.Log("into the void")
	l.Debug("still nothing")
}
