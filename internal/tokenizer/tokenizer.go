// Package tokenizer splits C-family source snippets into atomic tokens so
// that code answers can be compared structurally instead of byte-for-byte.
package tokenizer

import "regexp"

// tokenPattern lists token classes in priority order. Alternation in RE2 is
// leftmost-first, so earlier classes win at the same starting offset and the
// multi-character operators are tried before their single-character prefixes.
var tokenPattern = regexp.MustCompile(
	`"(?:\\.|[^"\\])*"` + // string literal
		`|'(?:\\.|[^'\\])*'` + // char literal
		`|[A-Za-z_][A-Za-z0-9_]*` + // identifier
		`|[0-9]+` + // integer literal
		`|<<|>>|\+\+|--|==|!=|>=|<=|&&|\|\||->|::` +
		`|[+\-*/%=&|!<>:;,.(){}\[\]]`,
)

// Tokenize returns the tokens of code in source order. Characters that do not
// start a token (whitespace, '#', '@', an unterminated quote, ...) only act
// as separators and are dropped.
func Tokenize(code string) []string {
	tokens := tokenPattern.FindAllString(code, -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// Equal reports whether a and b produce the same token sequence.
func Equal(a, b string) bool {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}
