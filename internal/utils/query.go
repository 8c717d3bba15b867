// Package utils holds small query-string helpers shared by the HTTP layer.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as a base-10 int, returning def when s is empty or
// not an integer.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// SplitList flattens repeated and comma-separated values into one list,
// dropping blanks: ["4,5", " 3 "] becomes ["4", "5", "3"]. It returns nil
// when nothing remains.
func SplitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
