package parse

import (
	"github.com/go-recordquery/recordquery/internal/ast"
	"github.com/go-recordquery/recordquery/internal/queryerr"
)

// Ordering parses a comma-separated ordering list (`Property [asc|desc],
// ...`) into a slice of clauses. It scans spans directly rather than
// splitting on commas and fields on whitespace: each PropertyPath is a
// slice of input, and the only string allocated is the lower-cased copy of
// each direction word.
func Ordering(input string) ([]ast.OrderingClause, error) {
	var clauses []ast.OrderingClause

	i, n := 0, len(input)
	for i < n {
		i = skipSpace(input, i)
		if i >= n {
			break
		}

		start := i
		for i < n && input[i] != ',' && input[i] != ' ' && input[i] != '\t' {
			i++
		}
		path := input[start:i]
		if path == "" {
			return nil, queryerr.NewInvalidSyntax(input[i:], i)
		}

		i = skipSpace(input, i)

		descending := false
		if i < n && input[i] != ',' {
			wordStart := i
			for i < n && input[i] != ',' && input[i] != ' ' && input[i] != '\t' {
				i++
			}
			word := input[wordStart:i]
			desc, ok := parseDirection(word)
			if !ok {
				return nil, queryerr.NewInvalidDirection(word, wordStart)
			}
			descending = desc
			i = skipSpace(input, i)
		}

		clauses = append(clauses, ast.OrderingClause{PropertyPath: path, Descending: descending})

		if i < n && input[i] == ',' {
			i++
			continue
		}
		break
	}

	return clauses, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func parseDirection(word string) (descending bool, ok bool) {
	switch foldASCII(word) {
	case "asc", "ascending":
		return false, true
	case "desc", "descending":
		return true, true
	default:
		return false, false
	}
}

// foldASCII lowercases ASCII letters only; direction keywords are always
// ASCII, so this avoids pulling in full Unicode case folding for a
// four-word vocabulary.
func foldASCII(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}
