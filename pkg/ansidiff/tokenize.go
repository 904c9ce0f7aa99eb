// Package ansidiff computes minimal rewrites between two versions of a
// terminal line that may contain ANSI escape sequences.
//
// A line is split into tokens (escape sequences and visible characters),
// grouped into state ranges (runs of characters sharing the same active
// escape state), and then compared column by column to produce the
// segments that must be rewritten.
package ansidiff

import (
	"strings"
	"unicode/utf8"
)

// Reset is the SGR sequence that clears all active attributes. It is the
// only sequence that ends a state range.
const Reset = "\x1b[0m"

// Token is one atomic unit of a line: either a complete CSI escape sequence
// or a single visible character.
type Token struct {
	// Value is the exact source text of the token.
	Value string
	// ANSI is true for escape sequences.
	ANSI bool
	// Offset is the byte offset of the token in the source string.
	Offset int
	// Col is the visual column the token starts at. Escape tokens carry
	// the column at which they take effect.
	Col int
	// Width is 0 for escape sequences and 1 for visible characters.
	Width int
}

// Tokenize splits text into tokens. An ESC [ introducer runs to the first
// ASCII letter, inclusive. An introducer with no terminating letter is not
// an escape sequence; its bytes become ordinary characters.
//
// Concatenating the Value of every token always yields text.
func Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text))
	col := 0
	for i := 0; i < len(text); {
		if n := escapeLen(text[i:]); n > 0 {
			tokens = append(tokens, Token{
				Value:  text[i : i+n],
				ANSI:   true,
				Offset: i,
				Col:    col,
			})
			i += n
			continue
		}

		_, size := utf8.DecodeRuneInString(text[i:])
		tokens = append(tokens, Token{
			Value:  text[i : i+size],
			Offset: i,
			Col:    col,
			Width:  1,
		})
		col++
		i += size
	}
	return tokens
}

// escapeLen returns the byte length of the escape sequence at the start of
// s, or 0 if s does not start with a terminated ESC [ sequence.
func escapeLen(s string) int {
	if len(s) < 2 || s[0] != '\x1b' || s[1] != '[' {
		return 0
	}
	for j := 2; j < len(s); j++ {
		if isLetter(s[j]) {
			return j + 1
		}
	}
	return 0
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// VisualLength returns the number of visible characters in text.
func VisualLength(text string) int {
	n := 0
	for _, tok := range Tokenize(text) {
		n += tok.Width
	}
	return n
}

// ActiveCodes returns the escape sequences that appear before visual column
// col, concatenated in order.
func ActiveCodes(tokens []Token, col int) string {
	var active strings.Builder
	pos := 0
	for _, tok := range tokens {
		if pos >= col {
			break
		}
		if tok.ANSI {
			active.WriteString(tok.Value)
		}
		pos += tok.Width
	}
	return active.String()
}

// TrailingCodes returns the escape sequences that follow the last visible
// character.
func TrailingCodes(tokens []Token) string {
	last := -1
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Width > 0 {
			last = i
			break
		}
	}
	var trailing strings.Builder
	for _, tok := range tokens[last+1:] {
		if tok.ANSI {
			trailing.WriteString(tok.Value)
		}
	}
	return trailing.String()
}
