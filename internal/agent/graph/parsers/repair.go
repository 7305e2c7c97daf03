package parsers

import "strings"

// RepairTruncated closes JSON that was cut off mid-stream: an open string is
// terminated (a dangling key gets a null value), a trailing comma or colon is
// fixed, and every open object/array is closed in nesting order. Balanced
// input is returned unchanged.
func RepairTruncated(s string) string {
	var (
		stack    []byte
		inString bool
		escaped  bool
		isKey    bool
		lastSig  byte
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				lastSig = c
			}
			continue
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			inString = true
			isKey = len(stack) > 0 && stack[len(stack)-1] == '{' && (lastSig == '{' || lastSig == ',')
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
		lastSig = c
	}

	if len(stack) == 0 && !inString {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(stack) + 8)
	if inString {
		if escaped {
			s = s[:len(s)-1]
		}
		b.WriteString(s)
		b.WriteByte('"')
		if isKey {
			b.WriteString(":null")
		}
	} else {
		trimmed := strings.TrimRight(s, " \t\r\n")
		switch {
		case strings.HasSuffix(trimmed, ","):
			trimmed = trimmed[:len(trimmed)-1]
		case strings.HasSuffix(trimmed, ":"):
			trimmed += "null"
		}
		b.WriteString(trimmed)
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
