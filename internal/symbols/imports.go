package symbols

import (
	"strings"
	"unicode"
)

// ImportName guesses the package name of an import path the way most
// modules name their packages: last element, minus a major-version element,
// a "go-"/"-go" affix or a ".vN" suffix, with dashes dropped.
// The second result reports whether the guess is exactly the last element.
// An empty name means no identifier could be derived.
func ImportName(path string) (string, bool) {
	parts := strings.Split(path, "/")
	last := parts[len(parts)-1]
	if isMajorVersion(last) && len(parts) > 1 {
		last = parts[len(parts)-2]
	}
	name := last
	if i := strings.Index(name, ".v"); i > 0 && isDigits(name[i+2:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	name = strings.TrimSuffix(name, ".go")
	name = strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return -1
		}
		return r
	}, name)
	if !isIdent(name) || IsKeyword(name) {
		return "", false
	}
	return name, name == parts[len(parts)-1]
}

func isMajorVersion(s string) bool {
	return len(s) > 1 && s[0] == 'v' && isDigits(s[1:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isIdent(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return s != ""
}

// IsExported reports whether name starts with an upper-case letter.
func IsExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
