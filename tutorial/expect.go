package tutorial

import (
	"regexp"
	"strings"

	"kiji-testing/types"
)

// Expect asserts that two values are equal.
func Expect(expect, actual interface{}) error {
	if expect != actual {
		return types.Wrapf(types.ErrExpectationFailed, "expected %v, got %v", expect, actual)
	}
	return nil
}

// ExpectContains asserts that text contains a substring.
func ExpectContains(needle, text string) error {
	if !strings.Contains(text, needle) {
		return types.Wrapf(types.ErrExpectationFailed, "missing %q in output", needle)
	}
	return nil
}

// ExpectRegex asserts that text matches a regular expression, anchored
// at the start like Python's re.match.
func ExpectRegex(pattern, text string) error {
	matched, err := regexp.MatchString("^(?:"+pattern+")", text)
	if err != nil {
		return types.Wrapf(types.ErrExpectationFailed, "bad expectation regex %q: %v", pattern, err)
	}
	if !matched {
		return types.Wrapf(types.ErrExpectationFailed, "%q does not match regex %q", text, pattern)
	}
	return nil
}

// nonEmpty filters empty lines.
func nonEmpty(lines []string) []string {
	var out []string
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
