package util

import "strings"

const maxFileNameLen = 255

// SanitizeFileName strips everything outside [A-Za-z0-9._-], collapses
// path-traversal sequences and caps the result length so a submitter-supplied
// name can never escape the uploads directory.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '.' || c == '_' || c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", "_")
	}
	out = strings.Trim(out, "/")
	if len(out) > maxFileNameLen {
		out = out[:maxFileNameLen]
	}
	return out
}
