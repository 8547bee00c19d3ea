package parser

import (
	"strconv"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// ArgX collects positional arguments as arg0, arg1, ...
//
// On a prefixed source any token without the prefix fills the first free
// slot. On a directive line the slot is named explicitly: "arg2=value".
type ArgX struct{}

func (ArgX) Parse(src tokens.Source, values *namedvalues.Values) (bool, error) {
	token, ok := src.PeekNextToken(0)
	if !ok {
		return false, nil
	}
	prefix := src.NamePrefixRequired()
	if prefix == "" {
		return parseNamedArg(src, values, token)
	}
	if strings.HasPrefix(token, prefix) {
		return false, nil
	}

	value, _ := src.ValueFromToken(token, values)
	name := "arg0"
	for i := 1; values.Contains(name); i++ {
		name = "arg" + strconv.Itoa(i)
	}
	src.SkipTokens(1)
	return store(values, name, value)
}

func parseNamedArg(src tokens.Source, values *namedvalues.Values, token string) (bool, error) {
	digits, ok := strings.CutPrefix(token, "arg")
	if !ok || digits == "" {
		return false, nil
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return false, nil
	}
	value, ok := src.PeekNextTokenValue(1, values)
	if !ok || value == "" {
		return false, nil
	}
	src.SkipTokens(2)
	return store(values, "arg"+strconv.Itoa(index), value)
}

// store adds name=value and reports the result in matcher form.
func store(values *namedvalues.Values, name, value string) (bool, error) {
	if err := values.Add(name, value); err != nil {
		values.SetError(err)
		return false, err
	}
	return true, nil
}
