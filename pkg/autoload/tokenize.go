package autoload

// Tokenize splits a bare type name into the shorter names formed by its
// camel or title case runs, so that a nested type can be found in the file
// of the type it is named after.
//
// A run closes when the letter case flips after at least two characters.
// Digits never flip the case. When the flip is to lower case, the last
// upper case letter already belongs to the next word and is left out of
// the token. Tokens come out in the order their runs close, and the full
// name itself is never part of the result; callers try it first.
//
// Names containing an underscore are not split at all.
//
//	Tokenize("My0NestedClass") // [My0 My0Nested]
//	Tokenize("MY0NestedClass") // [MY0 MY0Nested]
//	Tokenize("MY0Nested")      // [MY0]
//	Tokenize("has_underscore") // []
func Tokenize(name string) []string {
	if name == "" {
		return nil
	}

	var tokens []string
	upper := isUpper(name[0])
	run := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			return nil
		}

		if !isDigit(c) {
			upperNow := isUpper(c)
			if upperNow != upper && run > 1 {
				if upperNow {
					tokens = append(tokens, name[:i])
				} else {
					tokens = append(tokens, name[:i-1])
				}
				run = 0
			}
			upper = upperNow
		}

		run++
	}

	return tokens
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
