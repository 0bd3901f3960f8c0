package tunnel

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextLineTruncatesOverlongLines(t *testing.T) {
	input := strings.Repeat("a", maxLineLength+4096) + "\nhttps://late.example.com\r\nlast"
	r := bufio.NewReaderSize(strings.NewReader(input), 4096)

	line, err := nextLine(r)
	require.NoError(t, err)
	assert.Len(t, line, maxLineLength)

	line, err = nextLine(r)
	require.NoError(t, err)
	assert.Equal(t, "https://late.example.com", line)

	line, err = nextLine(r)
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = nextLine(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestNextLineEmptyLines(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\n\nx\n"))

	var lines []string
	for {
		line, err := nextLine(r)
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		lines = append(lines, line)
	}
	assert.Equal(t, []string{"", "", "x"}, lines)
}
