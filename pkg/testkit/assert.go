package testkit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code, showing the body on mismatch.
func AssertStatusCode(t *testing.T, label string, expected, got int, body []byte) bool {
	t.Helper()
	return assert.Equal(t, expected, got, "[%s] HTTP status code mismatch\nbody: %s", label, string(body))
}

// AssertJSONBody compares two JSON documents, ignoring key order and
// whitespace.
func AssertJSONBody(t *testing.T, label string, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal any
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", label)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", label, string(actual)) {
		return
	}
	assert.Equal(t, expVal, actVal, "[%s] response body mismatch", label)
}

// AssertSubset fails when expected is not contained in actual.
func AssertSubset(t *testing.T, label string, expected []byte, actual any) {
	t.Helper()

	var expVal any
	require.NoError(t, json.Unmarshal(expected, &expVal), "[%s] expect is not valid JSON", label)

	if diffs := DiffSubset("", expVal, actual); len(diffs) > 0 {
		t.Errorf("[%s] response does not match expectation:\n%s", label, strings.Join(diffs, "\n"))
	}
}

// DiffSubset lists where actual departs from expected. Objects may carry
// extra keys; arrays must have the same length; the string "*" matches any
// value.
func DiffSubset(path string, expected, actual any) []string {
	if s, ok := expected.(string); ok && s == "*" {
		return nil
	}

	var diffs []string
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffSubset(p, ev, av)...)
		}
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffSubset(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if !assert.ObjectsAreEqual(expected, actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

// Lookup resolves a dotted path such as "sweets.0.name" in a decoded JSON
// value.
func Lookup(v any, path string) (any, bool) {
	cur := v
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
