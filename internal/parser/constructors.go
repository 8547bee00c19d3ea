package parser

import (
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// Shorthands for the shapes that recur across command tables.

// Any1Value takes exactly one value of any kind.
func Any1Value(short, name, parts string) *Pattern {
	return New(short, name, parts, "1")
}

// Any1or2Value takes "a b" as "a=b", or a single value.
func Any1or2Value(short, name, parts string) *Pattern {
	return New(short, name, parts, "2;1")
}

// TrueFalse is a switch that may carry an explicit true or false.
func TrueFalse(short, name, parts string) *Pattern {
	return New(short, name, parts, "1;0", ValidValues("true;false"), Pin("true"))
}

// Pinned is a valueless switch that stores value under name.
func Pinned(short, name, parts, value string) *Pattern {
	return New(short, name, parts, "0", Pin(value))
}

// RequiredValidValue takes one value from a ';' list.
func RequiredValidValue(short, name, parts, valid string) *Pattern {
	return New(short, name, parts, "1", ValidValues(valid))
}

// OptionalValidValue takes one value from a ';' list, or stores def.
func OptionalValidValue(short, name, parts, valid, def string) *Pattern {
	return New(short, name, parts, "1;0", ValidValues(valid), Pin(def))
}

// OptionalWithDefault takes one value, or stores def.
func OptionalWithDefault(short, name, parts, def string) *Pattern {
	return New(short, name, parts, "1;0", Pin(def))
}

// OutputFileName takes a file name as written; "@name" is not expanded.
func OutputFileName(short, name, parts string, opts ...Option) *Pattern {
	return New(short, name, parts, "1", append([]Option{ValidValues("@@")}, opts...)...)
}

// IniFile takes an @file whose content the dispatcher parses as directive
// lines.
func IniFile() *Pattern {
	return New("--ini", namedvalues.KeyIniFile, "10", "1", ValidValues("@"))
}

// ExpandFileName names the file the expanded command line is written to.
func ExpandFileName() *Pattern {
	return New("--expand", namedvalues.KeyExpandFile, "00011", "1")
}

// NotRequired returns an all-optional bitmask for a dotted prefix, so a
// table can be mounted under a namespace the user may omit.
func NotRequired(prefix string) string {
	return strings.Repeat("0", strings.Count(prefix, ".")+1)
}

// Required returns an all-required bitmask for a dotted prefix.
func Required(prefix string) string {
	return strings.Repeat("1", strings.Count(prefix, ".")+1)
}
