package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/natefinch/atomic"
)

// CheckFilePermissionsForExecution checks whether the given filePath owner, group and permissions
// are safe to use this file for execution by the daemon.
func CheckFilePermissionsForExecution(filePath string) (bool, error) {
	var file = filePath

	file, err := filepath.EvalSymlinks(file)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(file)
	if os.IsNotExist(err) {
		return false, errors.New("file not found")
	}

	stat := info.Sys().(*syscall.Stat_t)
	if stat.Uid != 0 {
		return false, errors.New("owner is not root")
	}

	if stat.Gid != 0 {
		mode := info.Mode()
		groupWrite := mode & (os.FileMode(0o020))
		if groupWrite != 0 {
			return false, errors.New("group is not root but has write permission")
		}
	}

	otherWrite := info.Mode() & (os.FileMode(0o002))
	if otherWrite != 0 {
		return false, errors.New("others have write permission")
	}

	return true, nil
}

// ReadIntLines reads a flat text file containing one integer per line.
// Blank lines are skipped, unparsable lines yield 0 to keep positions stable.
func ReadIntLines(path string) (values []int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 0 {
			continue
		}
		value, err := strconv.Atoi(line)
		if err != nil {
			value = 0
		}
		values = append(values, value)
	}
	return values, nil
}

// WriteIntLinesAtomic overwrites the file at the given path with one integer per line.
func WriteIntLinesAtomic(values []int, path string) error {
	lines := make([]string, 0, len(values))
	for _, value := range values {
		lines = append(lines, fmt.Sprintf("%d", value))
	}
	content := strings.Join(lines, "\n") + "\n"
	return atomic.WriteFile(path, strings.NewReader(content))
}
