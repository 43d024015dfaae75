// Package partialjson turns a truncated JSON document, as streamed by a model
// producing structured output, into the largest valid document it implies.
package partialjson

import (
	"encoding/json"
	"strings"
)

type frame struct {
	closer byte
	// expectKey is set inside an object while the next string is a key.
	expectKey bool
}

// Complete returns a valid JSON document for the prefix s: the longest cut of
// s ending at a complete value, with an open string value closed and every
// open container closed. It returns false when s holds no value yet.
func Complete(s string) (string, bool) {
	var (
		stack    []frame
		inString bool
		isKey    bool
		escape   bool
		strStart int
		tokStart = -1

		safe       = -1
		safeClosed string
	)

	closers := func() string {
		var b strings.Builder
		for i := len(stack) - 1; i >= 0; i-- {
			b.WriteByte(stack[i].closer)
		}
		return b.String()
	}
	mark := func(at int) {
		safe = at
		safeClosed = closers()
	}
	endToken := func(at int) {
		if tokStart < 0 {
			return
		}
		if json.Valid([]byte(s[tokStart:at])) {
			mark(at)
		}
		tokStart = -1
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
				if !isKey {
					mark(i + 1)
				}
			}
			continue
		}

		switch c {
		case ' ', '\t', '\n', '\r':
			endToken(i)
		case '"':
			endToken(i)
			inString = true
			strStart = i
			isKey = len(stack) > 0 && stack[len(stack)-1].closer == '}' && stack[len(stack)-1].expectKey
		case '{':
			stack = append(stack, frame{closer: '}', expectKey: true})
			mark(i + 1)
		case '[':
			stack = append(stack, frame{closer: ']'})
			mark(i + 1)
		case '}', ']':
			endToken(i)
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			mark(i + 1)
		case ',':
			endToken(i)
			if len(stack) > 0 && stack[len(stack)-1].closer == '}' {
				stack[len(stack)-1].expectKey = true
			}
		case ':':
			endToken(i)
			if len(stack) > 0 {
				stack[len(stack)-1].expectKey = false
			}
		default:
			if tokStart < 0 {
				tokStart = i
			}
		}
	}

	if inString && !isKey {
		body := s[strStart:]
		if escape {
			body = body[:len(body)-1]
		}
		body = trimPartialUnicode(body)
		return closeString(s[:strStart], body+`"`, closers())
	}
	if !inString {
		endToken(len(s))
	}
	if safe < 0 {
		return "", false
	}
	return s[:safe] + safeClosed, true
}

func closeString(prefix, value, closed string) (string, bool) {
	out := prefix + value + closed
	if !json.Valid([]byte(out)) {
		return "", false
	}
	return out, true
}

// trimPartialUnicode drops a trailing \u escape that has fewer than four hex digits.
func trimPartialUnicode(s string) string {
	i := strings.LastIndex(s, `\u`)
	if i < 0 || len(s)-i >= 6 {
		return s
	}
	// The backslash may itself be escaped.
	bs := 0
	for j := i; j >= 0 && s[j] == '\\'; j-- {
		bs++
	}
	if bs%2 == 0 {
		return s
	}
	return s[:i]
}

// Decode completes s and decodes it into T. It returns false when s does not
// yet describe a value.
func Decode[T any](s string) (T, bool) {
	var v T
	doc, ok := Complete(strings.TrimSpace(StripFence(s)))
	if !ok {
		return v, false
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return v, false
	}
	return v, true
}

// StripFence removes a leading markdown code fence some models wrap JSON in.
func StripFence(s string) string {
	t := strings.TrimLeft(s, " \t\r\n")
	if !strings.HasPrefix(t, "```") {
		return s
	}
	nl := strings.IndexByte(t, '\n')
	if nl < 0 {
		return ""
	}
	t = t[nl+1:]
	if end := strings.LastIndex(t, "```"); end >= 0 {
		t = t[:end]
	}
	return t
}
