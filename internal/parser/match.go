package parser

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// nameMatch is the result of matching the name part of an option.
type nameMatch struct {
	tokens     int    // name tokens to skip before the values
	capture    string // text matched by a wildcard segment
	hasCapture bool
}

// Parse tries each bitmask layout in declared order. A value error from one
// layout is only reported if no later layout matches.
func (p *Pattern) Parse(src tokens.Source, values *namedvalues.Values) (bool, error) {
	var lastErr error
	for _, layout := range p.layouts {
		ok, err := p.parseLayout(src, values, layout)
		if ok {
			values.ClearError()
			return true, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		values.SetError(lastErr)
		return false, lastErr
	}
	return false, nil
}

func (p *Pattern) parseLayout(src tokens.Source, values *namedvalues.Values, layout Layout) (bool, error) {
	m, ok := p.matchShortName(src)
	if !ok {
		m, ok = matchFullName(src, layout)
	}
	if !ok {
		return false, nil
	}

	for _, count := range p.counts {
		parsed, err := p.parseValues(src, values, count, m)
		if err != nil {
			return false, err
		}
		if parsed {
			return true, nil
		}
	}
	return false, p.valueError(src, m.tokens)
}

func (p *Pattern) matchShortName(src tokens.Source) (nameMatch, bool) {
	if p.desc.Short == "" {
		return nameMatch{}, false
	}
	token, ok := src.PeekNextToken(0)
	if !ok || !strings.EqualFold(token, p.desc.Short) {
		return nameMatch{}, false
	}
	return nameMatch{tokens: 1}, true
}

// matchFullName walks the layout's segments against the dotted parts of the
// upcoming tokens. The source's name prefix applies until the first part
// matches. Optional segments that do not match are skipped without
// consuming anything. Once every part of a token is used, matching moves on
// to the next token. At least one whole token must be consumed.
func matchFullName(src tokens.Source, layout Layout) (nameMatch, bool) {
	prefix := src.NamePrefixRequired()

	var m nameMatch
	peek := 0
	parts := tokenParts(src, peek)
	next := 0

	for _, seg := range layout {
		matched := false
		if next < len(parts) {
			part := parts[next]
			switch seg.Kind {
			case Wildcard:
				if rest, ok := strings.CutPrefix(part, prefix); ok {
					m.capture, m.hasCapture = rest, true
					matched = true
				}
			default:
				matched = strings.EqualFold(part, prefix+seg.Name)
			}
		}

		if !matched {
			if seg.Required {
				return nameMatch{}, false
			}
			continue
		}

		next++
		prefix = ""
		if next == len(parts) {
			peek++
			parts = tokenParts(src, peek)
			next = 0
		}
	}

	if peek == 0 {
		return nameMatch{}, false
	}
	m.tokens = peek
	return m, true
}

func tokenParts(src tokens.Source, skip int) []string {
	token, ok := src.PeekNextToken(skip)
	if !ok {
		return nil
	}
	return strings.Split(token, ".")
}

// parseValues reads count values after the matched name. It consumes
// tokens only once every value is stored, so a failed attempt leaves the
// source where the layout found it.
func (p *Pattern) parseValues(src tokens.Source, values *namedvalues.Values, count int, m nameMatch) (bool, error) {
	d := p.desc

	token1, has1 := src.PeekNextToken(m.tokens)
	value1, isValue1 := "", false
	if has1 {
		value1, isValue1 = src.ValueFromToken(token1, values)
	}
	value2, isValue2 := "", false
	if token2, has2 := src.PeekNextToken(m.tokens + 1); has2 {
		value2, isValue2 = src.ValueFromToken(token2, values)
	}

	expanded := isValue1 && valueMatchesValidValues(d.Valid, token1, value1, true)
	raw := isValue1 && valueMatchesValidValues(d.Valid, token1, value1, false)

	// one is the single value, expanded or as written.
	one := strings.TrimLeft(token1, "=")
	if expanded {
		one = value1
	}
	pair := value1 + "=" + value2

	// store adds each key/value in turn and consumes the name and n value
	// tokens when all of them are stored.
	store := func(n int, kv ...string) (bool, error) {
		for i := 0; i+1 < len(kv); i += 2 {
			if err := p.add(values, kv[i], kv[i+1], m); err != nil {
				return false, err
			}
		}
		src.SkipTokens(m.tokens + n)
		return true, nil
	}

	switch {
	case !d.HasPinned:
		switch {
		case count == 0:
			return store(0)
		case count == 1 && (expanded || raw):
			return store(1, d.Key, one)
		case count == 2 && raw && isValue2:
			return store(2, d.Key, pair)
		}

	case d.PinnedKey == "":
		switch {
		case count == 0:
			return store(0, d.Key, d.Pinned)
		case count == 1 && (expanded || raw):
			return store(1, d.Key, one)
		}

	default:
		switch {
		case count == 0:
			return store(0, d.PinnedKey, d.Pinned)
		case count == 1 && (expanded || raw):
			return store(1, d.Key, one, d.PinnedKey, d.Pinned)
		case count == 2 && raw && isValue2:
			return store(2, d.Key, strings.TrimLeft(pair, "="), d.PinnedKey, d.Pinned)
		}
	}
	return false, nil
}

// add stores value under key, substituting a ".*" key segment with the
// wildcard capture of this match.
func (p *Pattern) add(values *namedvalues.Values, key, value string, m nameMatch) error {
	if m.hasCapture && strings.Contains(key, ".*") {
		key = strings.ReplaceAll(key, ".*", "."+m.capture)
	}
	if err := values.Add(key, value); err != nil {
		values.SetError(err)
		return err
	}
	return nil
}

// valueMatchesValidValues checks a candidate value token. skipAtAt rejects
// output-file ("@@") options so their token is taken as written, never
// expanded.
func valueMatchesValidValues(valid, token, value string, skipAtAt bool) bool {
	if valid == "" {
		return true
	}
	if valid == "@@" {
		return !skipAtAt && token != ""
	}

	sentinel := len(valid) <= 3
	if sentinel && strings.Contains(valid, "@") &&
		(strings.HasPrefix(token, "@") || (strings.HasPrefix(token, "=@") && !strings.HasPrefix(value, "=@"))) {
		return true
	}
	if sentinel && strings.Contains(valid, ";") && strings.Contains(token, ";") {
		return true
	}
	if sentinel && strings.Contains(valid, "\t") && strings.Contains(token, "\t") {
		return true
	}

	for _, v := range strings.Split(valid, ";") {
		if value == v {
			return true
		}
	}
	return false
}

// valueError describes what the option expected after its name.
func (p *Pattern) valueError(src tokens.Source, nameTokens int) error {
	expected := "0 values"
	switch p.desc.Count {
	case "":
	case "2;1":
		expected = "1-2 values"
	case "1;0":
		expected = "0-1 values"
	case "1":
		expected = "1 value"
	default:
		expected = p.desc.Count + " values"
	}

	switch p.desc.Valid {
	case "@":
		expected = "@FILE value"
	case "@@":
		expected = "@FILE output value"
	case ";":
		expected = "semi-colon delimited list of values"
	case "@;", ";@":
		expected = "@FILE or semi-colon delimited list of values"
	}

	msg := fmt.Sprintf(`Expected %s after "%s" (in "%s")`,
		expected, src.PeekAllTokens(nameTokens), src.PeekAllTokens(tokens.All))
	return domain.NewParseError(domain.ErrValueShape, msg, "")
}
