package tokens

import (
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// IniLine is a Source over one directive line such as
// "service.config.region=eastus". The name is split on '.' and the value
// keeps its leading '=' so it can never be mistaken for a name part.
// A line without '=' is a bare name: "flag" reads as ["flag", "="].
type IniLine struct {
	queue
	opts options
}

// NewIniLine tokenizes one directive line. Names carry no prefix.
func NewIniLine(line string, opts ...Option) *IniLine {
	s := &IniLine{opts: buildOptions("", opts)}

	line = strings.TrimSpace(line)
	eq := strings.IndexByte(line, '=')
	switch {
	case eq > 0:
		s.tokens = append(strings.Split(line[:eq], "."), line[eq:])
	case line != "":
		s.tokens = []string{line, "="}
	}
	return s
}

func (s *IniLine) PeekNextTokenValue(skip int, values *namedvalues.Values) (string, bool) {
	token, ok := s.PeekNextToken(skip)
	if !ok {
		return "", false
	}
	return s.ValueFromToken(token, values)
}

func (s *IniLine) PopNextTokenValue(values *namedvalues.Values) (string, bool) {
	token, ok := s.PopNextToken()
	if !ok {
		return "", false
	}
	return s.ValueFromToken(token, values)
}

// PeekAllTokens rejoins name parts with '.' and appends the =value as is.
func (s *IniLine) PeekAllTokens(limit int) string {
	n := min(limit, len(s.tokens))
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 && i != len(s.tokens)-1 {
			sb.WriteByte('.')
		}
		sb.WriteString(s.tokens[i])
	}
	return sb.String()
}

// ValueFromToken accepts only "=value" tokens.
func (s *IniLine) ValueFromToken(token string, values *namedvalues.Values) (string, bool) {
	value, ok := strings.CutPrefix(token, "=")
	if !ok {
		return "", false
	}
	return s.opts.expand(value, values), true
}

func (s *IniLine) NamePrefixRequired() string {
	return s.opts.prefix
}
