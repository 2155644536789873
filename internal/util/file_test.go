package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntLinesRoundTrip(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "values.txt")
	values := []int{20, 30, 40, 50, 20}

	// WHEN
	err := WriteIntLinesAtomic(values, path)
	assert.NoError(t, err)
	loaded, err := ReadIntLines(path)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, values, loaded)
}

func TestReadIntLinesSkipsBlankLines(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "values.txt")
	assert.NoError(t, os.WriteFile(path, []byte("20\n\n30\n\n"), 0644))

	// WHEN
	values, err := ReadIntLines(path)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []int{20, 30}, values)
}

func TestReadIntLinesUnparsableLineYieldsZero(t *testing.T) {
	// GIVEN
	// positions must stay stable even when a line is corrupt
	path := filepath.Join(t.TempDir(), "values.txt")
	assert.NoError(t, os.WriteFile(path, []byte("20\nbogus\n40\n"), 0644))

	// WHEN
	values, err := ReadIntLines(path)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []int{20, 0, 40}, values)
}
