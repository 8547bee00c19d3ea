package parser

import (
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// InputWildcard maps "--input NAME=VALUE" and "--input NAME VALUE" to
// input.NAME.
type InputWildcard struct{}

func (InputWildcard) Parse(src tokens.Source, values *namedvalues.Values) (bool, error) {
	token, ok := src.PeekNextToken(0)
	if !ok {
		return false, nil
	}
	name, ok := strings.CutPrefix(token, src.NamePrefixRequired())
	if !ok || name != "input" {
		return false, nil
	}

	token1, has1 := src.PeekNextToken(1)
	if !has1 {
		return false, nil
	}
	if strings.Contains(token1, "=") {
		value, _ := src.ValueFromToken(token1, values)
		k, v, _ := strings.Cut(value, "=")
		src.SkipTokens(2)
		return store(values, "input."+k, v)
	}

	value2, ok := src.PeekNextTokenValue(2, values)
	if token1 == "" || !ok || value2 == "" {
		return false, nil
	}
	src.SkipTokens(3)
	return store(values, "input."+token1, value2)
}
