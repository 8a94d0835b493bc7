package gqltext

import "strings"

type tokenKind int

const (
	tokName tokenKind = iota
	tokPunct
	tokString
	tokNumber
	tokSpread
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits a GraphQL document into tokens. Comments, commas and whitespace
// are dropped. Unterminated strings run to the end of input; the scanner never
// fails, it only reports whether braces balanced.
func lex(src string) (tokens []token, balanced bool) {
	depth := 0
	i := 0
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == ',':
			i++
		case ch == '"':
			start := i
			i = skipString(src, i)
			tokens = append(tokens, token{kind: tokString, text: src[start:i], pos: start})
		case ch == '.':
			if strings.HasPrefix(src[i:], "...") {
				tokens = append(tokens, token{kind: tokSpread, text: "...", pos: i})
				i += 3
				continue
			}
			i++
		case isNameStart(ch):
			start := i
			for i < len(src) && isNameChar(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokName, text: src[start:i], pos: start})
		case ch == '-' || (ch >= '0' && ch <= '9'):
			start := i
			i++
			for i < len(src) && (isNameChar(src[i]) || src[i] == '.' || src[i] == '+' || src[i] == '-') {
				i++
			}
			tokens = append(tokens, token{kind: tokNumber, text: src[start:i], pos: start})
		default:
			switch ch {
			case '{':
				depth++
			case '}':
				depth--
			}
			tokens = append(tokens, token{kind: tokPunct, text: string(ch), pos: i})
			i++
		}
	}
	return tokens, depth == 0
}

// skipString returns the index just past the string literal starting at i.
// Handles both "..." and """block""" forms.
func skipString(src string, i int) int {
	if strings.HasPrefix(src[i:], `"""`) {
		end := strings.Index(src[i+3:], `"""`)
		if end < 0 {
			return len(src)
		}
		return i + 3 + end + 3
	}
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return i + 1
		case '\n':
			return i
		}
		i++
	}
	return len(src)
}

func isNameStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || (ch >= '0' && ch <= '9')
}
