package symbols

var universe = map[string]struct{}{
	// types
	"any": {}, "bool": {}, "byte": {}, "comparable": {}, "complex64": {}, "complex128": {},
	"error": {}, "float32": {}, "float64": {}, "int": {}, "int8": {}, "int16": {},
	"int32": {}, "int64": {}, "rune": {}, "string": {}, "uint": {}, "uint8": {},
	"uint16": {}, "uint32": {}, "uint64": {}, "uintptr": {},
	// constants
	"true": {}, "false": {}, "iota": {},
	// zero value
	"nil": {},
	// functions
	"append": {}, "cap": {}, "clear": {}, "close": {}, "complex": {}, "copy": {},
	"delete": {}, "imag": {}, "len": {}, "make": {}, "max": {}, "min": {}, "new": {},
	"panic": {}, "print": {}, "println": {}, "real": {}, "recover": {},
}

// IsPredeclared reports whether name belongs to the universe scope.
func IsPredeclared(name string) bool {
	_, ok := universe[name]
	return ok
}

var keywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {}, "default": {},
	"defer": {}, "else": {}, "fallthrough": {}, "for": {}, "func": {}, "go": {},
	"goto": {}, "if": {}, "import": {}, "interface": {}, "map": {}, "package": {},
	"range": {}, "return": {}, "select": {}, "struct": {}, "switch": {}, "type": {},
	"var": {},
}

// IsKeyword reports whether name is a Go keyword.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}
