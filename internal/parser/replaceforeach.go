package parser

import (
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// ReplaceForEach repeats a command once per value of a replacement
// variable:
//
//	--foreach var NAME in (@FILE | a;b;c)
//	--foreach var NAME in files PATTERN
//	--replace.var.NAME VALUE
//
// "--foreach.var NAME" and "--replace-foreach NAME" are accepted for
// "--foreach var NAME".
//
// The loop forms are rewritten to "--foreach replace.var.NAME in LIST" and
// handed to ForEach.
type ReplaceForEach struct {
	pattern *Pattern
	files   Files
	foreach *ForEach
}

// NewReplaceForEach builds a ReplaceForEach. files resolves @FILE lists and
// the "files PATTERN" form.
func NewReplaceForEach(files Files) *ReplaceForEach {
	return &ReplaceForEach{
		pattern: New("", "replace.var.*", "011;101", "1;0", Pin("=")),
		files:   files,
		foreach: NewForEach(files),
	}
}

func (r *ReplaceForEach) Parse(src tokens.Source, values *namedvalues.Values) (bool, error) {
	if ok, err := r.parseLoop(src, values); ok || err != nil {
		return ok, err
	}
	return r.pattern.Parse(src, values)
}

// parseLoop handles the "--foreach var NAME in ..." spellings.
func (r *ReplaceForEach) parseLoop(src tokens.Source, values *namedvalues.Values) (bool, error) {
	prefix := src.NamePrefixRequired()
	if prefix == "" {
		return false, nil
	}

	skip := 1
	switch t, _ := src.PeekNextToken(0); t {
	case prefix + "foreach":
		if v, _ := src.PeekNextToken(1); v != "var" {
			return false, nil
		}
		skip = 2
	case prefix + "foreach.var", prefix + "replace.foreach":
	default:
		return false, nil
	}

	name, ok := src.PeekNextToken(skip)
	if !ok || name == "" {
		return false, nil
	}
	if t, _ := src.PeekNextToken(skip + 1); t != "in" {
		return false, nil
	}

	list, hasList := src.PeekNextToken(skip + 2)
	pattern, hasPattern := src.PeekNextToken(skip + 3)
	consumed := skip + 3
	if list == "files" && hasPattern && pattern != "" {
		list = r.findFiles(pattern, values)
		consumed++
	} else if !hasList {
		return false, nil
	}

	var opts []tokens.Option
	if r.files != nil {
		opts = append(opts, tokens.WithExpander(r.files))
	}
	loop := tokens.NewCmdLine([]string{"--foreach", "replace.var." + name, "in", list}, values, opts...)

	ok, err := r.foreach.Parse(loop, values)
	if ok {
		src.SkipTokens(consumed)
	}
	return ok, err
}

// findFiles expands pattern to a ';' list. A single match keeps a trailing
// ';' so it still reads as a list.
func (r *ReplaceForEach) findFiles(pattern string, values *namedvalues.Values) string {
	if r.files == nil {
		return ";"
	}
	found := strings.Join(r.files.FindFiles(values.ReplaceValues(pattern)), ";")
	if !strings.Contains(found, ";") {
		found += ";"
	}
	return found
}
