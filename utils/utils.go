package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"kiji-testing/types"
)

// NowMS returns the current time, in ms since the Epoch.
// Run identifiers derive from it, eg. kiji instance names.
func NowMS() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// Truth parses a human truth value.
// Accepts "yes", "no", "true", "false", case insensitive.
func Truth(text string) (bool, error) {
	switch strings.ToLower(text) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	default:
		return false, types.Wrapf(types.ErrInvalidTruthValue, "got %q", text)
	}
}

// Find walks root and returns the paths of files whose base name matches
// the given regexp. Equivalent of 'find <root> -name <regex>'.
func Find(root string, regex string) ([]string, error) {
	pattern, err := regexp.Compile(regex)
	if err != nil {
		return nil, err
	}

	var matches []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if pattern.MatchString(filepath.Base(path)) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// ProcessExists reports whether a process with the given pid is alive.
func ProcessExists(pid int) bool {
	_, err := os.Stat(filepath.Join("/proc", strconv.Itoa(pid)))
	return err == nil
}
