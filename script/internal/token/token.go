package token

import (
	"fmt"
	"unicode"
)

type Type int

const (
	Ident Type = iota
	Int
	Real
	String
	Color
	Punct
	EOF
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Int:
		return "integer"
	case Real:
		return "real"
	case String:
		return "string"
	case Color:
		return "color"
	case Punct:
		return "punctuation"
	case EOF:
		return "end of input"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
	Col   int
}

// Error is a lexical error with its position.
type Error struct {
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

const puncts = "+-*/%^:()[],;="

// Tokenize splits input into tokens terminated by an EOF token.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1
	runes := []rune(input)

	advance := func(n int) { col += n }

	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\n' {
			line++
			col = 1
			i++
			continue
		}
		if unicode.IsSpace(r) {
			advance(1)
			i++
			continue
		}

		// Line comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		}

		// Block comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			startLine, startCol := line, col
			i += 2
			advance(2)
			closed := false
			for i < len(runes) {
				if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
					i += 2
					advance(2)
					closed = true
					break
				}
				if runes[i] == '\n' {
					line++
					col = 1
				} else {
					advance(1)
				}
				i++
			}
			if !closed {
				return nil, &Error{"unterminated comment", startLine, startCol}
			}
			continue
		}

		startCol := col

		// String literal
		if r == '"' {
			var buf []rune
			i++
			advance(1)
			closed := false
			for i < len(runes) {
				c := runes[i]
				if c == '\n' {
					break
				}
				if c == '"' {
					closed = true
					i++
					advance(1)
					break
				}
				if c == '\\' && i+1 < len(runes) {
					i++
					advance(1)
					switch runes[i] {
					case 'n':
						c = '\n'
					case 't':
						c = '\t'
					default:
						c = runes[i]
					}
				}
				buf = append(buf, c)
				i++
				advance(1)
			}
			if !closed {
				return nil, &Error{"unterminated string", line, startCol}
			}
			tokens = append(tokens, Token{string(buf), String, line, startCol})
			continue
		}

		// Color literal: #rgb, #argb, #rrggbb, #aarrggbb
		if r == '#' {
			start := i
			i++
			for i < len(runes) && isHex(runes[i]) {
				i++
			}
			n := i - start - 1
			advance(i - start)
			if n != 3 && n != 4 && n != 6 && n != 8 {
				return nil, &Error{fmt.Sprintf("bad color literal %q", string(runes[start:i])), line, startCol}
			}
			tokens = append(tokens, Token{string(runes[start+1 : i]), Color, line, startCol})
			continue
		}

		// Number
		if unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			typ := Int
			if r == '0' && i+1 < len(runes) && (runes[i+1] == 'x' || runes[i+1] == 'X') {
				i += 2
				for i < len(runes) && isHex(runes[i]) {
					i++
				}
			} else {
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
				if i < len(runes) && runes[i] == '.' {
					typ = Real
					i++
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
				if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
					j := i + 1
					if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
						j++
					}
					if j < len(runes) && unicode.IsDigit(runes[j]) {
						typ = Real
						i = j
						for i < len(runes) && unicode.IsDigit(runes[i]) {
							i++
						}
					}
				}
			}
			advance(i - start)
			tokens = append(tokens, Token{string(runes[start:i]), typ, line, startCol})
			continue
		}

		// Identifier or keyword
		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			advance(i - start)
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line, startCol})
			continue
		}

		if isPunct(r) {
			tokens = append(tokens, Token{string(r), Punct, line, startCol})
			i++
			advance(1)
			continue
		}

		return nil, &Error{fmt.Sprintf("unexpected character %q", r), line, col}
	}

	tokens = append(tokens, Token{"", EOF, line, col})
	return tokens, nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isPunct(r rune) bool {
	for _, p := range puncts {
		if p == r {
			return true
		}
	}
	return false
}
