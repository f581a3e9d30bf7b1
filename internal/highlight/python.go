package highlight

// Python returns the built-in Python definition.
// Triple-double-quoted blocks use region state 1, triple-single-quoted state 2.
func Python() Definition {
	return Definition{
		Name:       "python",
		Extensions: []string{".py", ".pyw", ".pyi"},
		Keywords: []string{
			"and", "assert", "break", "class", "continue", "def",
			"del", "elif", "else", "except", "exec", "finally",
			"for", "from", "global", "if", "import", "in",
			"is", "lambda", "not", "or", "pass", "print",
			"raise", "return", "try", "while", "yield",
			"None", "True", "False",
		},
		Operators: []string{
			`=`,
			// Comparison
			`==`, `!=`, `<`, `<=`, `>`, `>=`,
			// Arithmetic
			`\+`, `-`, `\*`, `/`, `//`, `\%`, `\*\*`,
			// In-place
			`\+=`, `-=`, `\*=`, `/=`, `\%=`,
			// Bitwise
			`\^`, `\|`, `\&`, `\~`, `>>`, `<<`,
		},
		Braces: []string{
			`\{`, `\}`, `\(`, `\)`, `\[`, `\]`,
		},
		Rules: []LineRule{
			{Pattern: `\b(?:cls|self)\b`, Style: StyleClsSelf},
			{Pattern: `\bdef\b\s*(\w+)`, Capture: 1, Style: StyleDef},
			{Pattern: `\bclass\b\s*(\w+)`, Capture: 1, Style: StyleClass},

			// Numeric literals never start inside another literal or name,
			// so each literal gets exactly one span.
			{Pattern: `(?<![\w.]|[eE][+-])[+-]?[0-9]+[lL]?(?![\w.])`, Style: StyleNumbers},
			{Pattern: `(?<![\w.])[+-]?0[xX][0-9A-Fa-f]+[lL]?(?![\w.])`, Style: StyleNumbers},
			{Pattern: `(?<![\w.]|[eE][+-])[+-]?(?:[0-9]+\.[0-9]+(?:[eE][+-]?[0-9]+)?|[0-9]+[eE][+-]?[0-9]+)(?![\w.])`, Style: StyleNumbers},

			{Pattern: `\b_[\w]+\b`, Style: StylePrivate},

			// Quoted strings, possibly containing escape sequences.
			{Pattern: `"[^"\\\n]*(\\.[^"\\\n]*)*"`, Style: StyleString},
			{Pattern: `'[^'\\\n]*(\\.[^'\\\n]*)*'`, Style: StyleString},

			{Pattern: `#[^\n]*`, Style: StyleComment},
		},
		MultiLine: []MultiLineRule{
			{Start: `"""`, End: `"""`, State: 1, Style: StyleStringBlock},
			{Start: `'''`, End: `'''`, State: 2, Style: StyleStringBlock},
		},
	}
}
