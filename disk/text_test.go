package disk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextContent(t *testing.T) {

	assert.Equal(t, []byte("HELLO"), TextContent([]byte("HELLO\x1aJUNKJUNK")))

	// CR/LF folds to LF, bare CR too
	assert.Equal(t, []byte("a\nb\nc"), TextContent([]byte("a\r\nb\rc")))

	// WordStar-style high bits are stripped
	in := []byte{'H' | 0x80, 'i'}
	assert.Equal(t, []byte("Hi"), TextContent(in))

	assert.Empty(t, TextContent([]byte{0x1A}))
}

func TestIsProbablyText(t *testing.T) {

	assert.True(t, IsProbablyText([]byte("10 PRINT \"HELLO\"\r\n20 GOTO 10\r\n\x1a")))
	assert.False(t, IsProbablyText([]byte{0x00, 0x01, 0x02, 0xC3, 0x00, 0x01}))
	assert.False(t, IsProbablyText(nil))
	assert.False(t, IsProbablyText(bytes.Repeat([]byte{0x01}, 100)))
}
