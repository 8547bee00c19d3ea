package tokens

import (
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// TsvRow is a Source over one foreach data row paired with its column names:
// columns "a\tb" and row "1\t2" read as ["a", "=1", "b", "=2"].
type TsvRow struct {
	queue
}

// NewTsvRow pairs column names with row values. Missing names or values on
// either side become empty strings.
func NewTsvRow(columns, row string) *TsvRow {
	names := splitTsvLine(columns)
	cells := splitTsvLine(row)

	s := &TsvRow{}
	for i := 0; i < max(len(names), len(cells)); i++ {
		name, cell := "", ""
		if i < len(names) {
			name = names[i]
		}
		if i < len(cells) {
			cell = cells[i]
		}
		s.tokens = append(s.tokens, name, "="+cell)
	}
	return s
}

// splitTsvLine splits on tabs, or on ';' when the line has no tab.
func splitTsvLine(line string) []string {
	line = strings.Trim(line, "\r\n")
	if strings.Contains(line, "\t") {
		return strings.Split(line, "\t")
	}
	return strings.Split(line, ";")
}

func (s *TsvRow) PeekNextTokenValue(skip int, values *namedvalues.Values) (string, bool) {
	token, ok := s.PeekNextToken(skip)
	if !ok {
		return "", false
	}
	return s.ValueFromToken(token, values)
}

func (s *TsvRow) PopNextTokenValue(values *namedvalues.Values) (string, bool) {
	token, ok := s.PopNextToken()
	if !ok {
		return "", false
	}
	return s.ValueFromToken(token, values)
}

// PeekAllTokens stops after the first value token.
func (s *TsvRow) PeekAllTokens(limit int) string {
	n := min(limit, len(s.tokens))
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(s.tokens[i])
		if strings.HasPrefix(s.tokens[i], "=") {
			break
		}
	}
	return sb.String()
}

// ValueFromToken accepts only "=value" tokens. Row cells are literal.
func (s *TsvRow) ValueFromToken(token string, _ *namedvalues.Values) (string, bool) {
	return strings.CutPrefix(token, "=")
}

func (s *TsvRow) NamePrefixRequired() string {
	return ""
}
