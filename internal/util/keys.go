package util

import "strings"

const sep = ":"

// Join returns "<prefix>:<key>", or key unchanged when prefix is empty.
func Join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + sep + key
}

// Strip removes "<prefix>:" from a storage key. Keys outside the prefix are returned as-is.
func Strip(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, prefix+sep)
}

// JoinMany maps Join over keys.
func JoinMany(prefix string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = Join(prefix, k)
	}
	return out
}

// Pattern builds a SCAN MATCH pattern for pattern under prefix.
// Glob metacharacters in prefix are escaped so the prefix matches literally.
func Pattern(prefix, pattern string) string {
	if pattern == "" {
		pattern = "*"
	}
	if prefix == "" {
		return pattern
	}
	return escapeGlob(prefix) + sep + pattern
}

func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
