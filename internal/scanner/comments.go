package scanner

import "strings"

// stripComments removes // and /* */ comments from src. Newlines inside
// block comments are kept so line structure survives. Comment markers inside
// string and character literals are left alone.
func stripComments(src string) string {
	if !strings.Contains(src, "/") {
		return src
	}

	const (
		code = iota
		lineComment
		blockComment
		stringLit
		charLit
	)

	var sb strings.Builder
	sb.Grow(len(src))

	state := code
	for i := 0; i < len(src); i++ {
		c := src[i]
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}

		switch state {
		case code:
			switch {
			case c == '/' && next == '/':
				state = lineComment
				i++
			case c == '/' && next == '*':
				state = blockComment
				sb.WriteByte(' ')
				i++
			case c == '"':
				state = stringLit
				sb.WriteByte(c)
			case c == '\'':
				state = charLit
				sb.WriteByte(c)
			default:
				sb.WriteByte(c)
			}
		case lineComment:
			if c == '\n' {
				state = code
				sb.WriteByte(c)
			}
		case blockComment:
			switch {
			case c == '*' && next == '/':
				state = code
				i++
			case c == '\n':
				sb.WriteByte(c)
			}
		case stringLit, charLit:
			sb.WriteByte(c)
			quote := byte('"')
			if state == charLit {
				quote = '\''
			}
			switch {
			case c == '\\' && next != 0:
				sb.WriteByte(next)
				i++
			case c == quote, c == '\n':
				state = code
			}
		}
	}
	return sb.String()
}
