package parser

import (
	"strconv"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// Files is the file access the expansion parsers need.
type Files interface {
	tokens.Expander
	FindFileInDataPath(name string, values *namedvalues.Values) (string, bool)
	ReadAllText(path string) (string, error)
	FindFiles(patterns string) []string
}

// ForEach records row sets a command is repeated over. Each set is stored
// as foreach.N.tsv.file (rows, one per line) with its header and column
// settings; foreach.count is the number of sets.
//
//	--foreach [tsv] [columns] COLS [skip header] in (@FILE | a;b;c | DATAFILE)
//	--foreach count N
//	--foreach count+ 1
//	--foreach N tsv file (VALUE | columns COLS | has header BOOL | skip header BOOL)
//
// The directive-line spelling is the same with dots: foreach.0.tsv.file=@rows.
type ForEach struct {
	files Files
}

// NewForEach builds a ForEach. files may be nil, in which case bare data
// file names are not recognized.
func NewForEach(files Files) *ForEach {
	return &ForEach{files: files}
}

func (f *ForEach) Parse(src tokens.Source, values *namedvalues.Values) (bool, error) {
	token, ok := src.PeekNextToken(0)
	if !ok || token != src.NamePrefixRequired()+"foreach" {
		return false, nil
	}

	index := values.Int(namedvalues.KeyForEachCount, 0)
	token, ok = src.PeekNextToken(1)
	switch {
	case token == "count+":
		return parseCountPlusOne(src, values, index)
	case token == "count":
		return parseCount(src, values)
	case token == "{count}":
		return parseIndexed(src, values, index)
	case ok && isDigits(token):
		n, _ := strconv.Atoi(token)
		return parseIndexed(src, values, n)
	}
	return f.parseNonIndexed(src, values, token, ok, index)
}

func parseCount(src tokens.Source, values *namedvalues.Values) (bool, error) {
	value, ok := src.PeekNextTokenValue(2, values)
	if !ok {
		return false, nil
	}
	src.SkipTokens(3)
	return store(values, namedvalues.KeyForEachCount, value)
}

func parseCountPlusOne(src tokens.Source, values *namedvalues.Values, index int) (bool, error) {
	value, ok := src.PeekNextTokenValue(2, values)
	if !ok || value != "1" {
		return false, nil
	}
	src.SkipTokens(3)
	values.Set(namedvalues.KeyForEachCount, strconv.Itoa(index+1))
	return true, nil
}

func parseIndexed(src tokens.Source, values *namedvalues.Values, index int) (bool, error) {
	if t, _ := src.PeekNextToken(2); t != "tsv" {
		return false, nil
	}
	if t, _ := src.PeekNextToken(3); t != "file" {
		return false, nil
	}

	key := "foreach." + strconv.Itoa(index) + ".tsv.file"
	token, ok := src.PeekNextToken(4)
	switch {
	case !ok:
		return false, nil

	case token == "has" || token == "skip":
		if t, _ := src.PeekNextToken(5); t != "header" {
			return false, nil
		}
		value, _ := src.PeekNextTokenValue(6, values)
		if value != "true" && value != "false" {
			return false, nil
		}
		src.SkipTokens(7)
		return store(values, key+"."+token+".header", value)

	case token == "columns":
		value, ok := src.PeekNextTokenValue(5, values)
		if !ok {
			return false, nil
		}
		src.SkipTokens(6)
		return store(values, key+".columns", value)

	default:
		value, _ := src.ValueFromToken(token, values)
		src.SkipTokens(5)
		return store(values, key, value)
	}
}

func (f *ForEach) parseNonIndexed(src tokens.Source, values *namedvalues.Values, token string, ok bool, index int) (bool, error) {
	skip := 2
	if token == "tsv" {
		token, ok = src.PeekNextToken(skip)
		skip++
	}
	if token == "columns" {
		token, ok = src.PeekNextToken(skip)
		skip++
	}

	skipHeader := false
	if peekWord(src, values, skip) == "skip" && peekWord(src, values, skip+1) == "header" {
		skipHeader = true
		skip += 2
	}

	columns := ""
	switch {
	case peekWord(src, values, skip) == "in":
		columns, _ = src.ValueFromToken(token, values)
		token, ok = src.PeekNextToken(skip + 1)
		skip += 2
	case token == "in":
		token, ok = src.PeekNextToken(skip)
		skip++
	}
	if !ok {
		return false, nil
	}

	hasHeader := columns == "" || skipHeader

	atFile := strings.HasPrefix(token, "@")
	isList := !atFile && strings.Contains(token, ";")
	path, isFile := "", false
	if !atFile && !isList && f.files != nil {
		path, isFile = f.files.FindFileInDataPath(token, values)
	}
	if !atFile && !isList && !isFile {
		return false, nil
	}

	var value string
	if isFile {
		text, err := f.files.ReadAllText(path)
		if err != nil {
			return false, nil
		}
		value = text
	} else {
		value, _ = src.ValueFromToken(token, values)
	}
	if isList {
		hasHeader = false
		value = strings.ReplaceAll(value, ";", "\n")
	}

	src.SkipTokens(skip)
	key := "foreach." + strconv.Itoa(index) + ".tsv.file"
	if ok, err := store(values, key, value); !ok {
		return false, err
	}
	if ok, err := store(values, key+".has.header", strconv.FormatBool(hasHeader)); !ok {
		return false, err
	}
	if columns != "" {
		if ok, err := store(values, key+".columns", columns); !ok {
			return false, err
		}
	}
	values.Set(namedvalues.KeyForEachCount, strconv.Itoa(index+1))
	return true, nil
}

func peekWord(src tokens.Source, values *namedvalues.Values, skip int) string {
	value, _ := src.PeekNextTokenValue(skip, values)
	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
