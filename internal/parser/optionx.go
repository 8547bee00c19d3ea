package parser

import (
	"strconv"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// OptionX takes every value up to the next prefixed token and stores them
// as name0, name1, ... skipping indexes already set. It only applies to
// prefixed sources.
type OptionX struct {
	short  string
	name   string
	layout []Layout
}

// NewOptionX builds an OptionX for the given name and bitmask.
func NewOptionX(short, name, parts string) *OptionX {
	p := New(short, name, parts, "0")
	return &OptionX{short: short, name: name, layout: p.layouts}
}

func (o *OptionX) Parse(src tokens.Source, values *namedvalues.Values) (bool, error) {
	prefix := src.NamePrefixRequired()
	if prefix == "" {
		return false, nil
	}

	nameTokens := 0
	if token, ok := src.PeekNextToken(0); ok && o.short != "" && strings.EqualFold(token, o.short) {
		nameTokens = 1
	} else {
		for _, layout := range o.layout {
			if m, ok := matchFullName(src, layout); ok {
				nameTokens = m.tokens
				break
			}
		}
	}
	if nameTokens == 0 {
		return false, nil
	}

	var queue []string
	for i := nameTokens; ; i++ {
		token, ok := src.PeekNextToken(i)
		if !ok || strings.HasPrefix(token, prefix) {
			break
		}
		value, _ := src.ValueFromToken(token, values)
		queue = append(queue, value)
	}
	if len(queue) == 0 {
		return false, nil
	}

	src.SkipTokens(nameTokens + len(queue))
	for i := 0; len(queue) > 0; i++ {
		key := o.name + strconv.Itoa(i)
		if values.Contains(key) {
			continue
		}
		if ok, err := store(values, key, queue[0]); !ok {
			return false, err
		}
		queue = queue[1:]
	}
	return true, nil
}
