// Package tokens provides peekable cursors over the flat token lists the
// parsers consume. The same parser tables run unchanged over live argv
// (CmdLine), one directive line from an @file (IniLine) and one foreach row
// (TsvRow).
//
// Sources are single-threaded: one cursor is owned by one parse.
package tokens

import (
	"math"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// All is the PeekAllTokens limit meaning "every remaining token".
const All = math.MaxInt

// Source is a sequential cursor over tokens. Peeking never consumes;
// looking past the end reports no token instead of failing.
type Source interface {
	// PeekNextToken returns the token skip positions ahead of the cursor.
	PeekNextToken(skip int) (string, bool)
	// PeekNextTokenValue is PeekNextToken followed by ValueFromToken.
	PeekNextTokenValue(skip int, values *namedvalues.Values) (string, bool)
	// PopNextToken returns the next token and consumes it.
	PopNextToken() (string, bool)
	// PopNextTokenValue is PopNextToken followed by ValueFromToken.
	PopNextTokenValue(values *namedvalues.Values) (string, bool)
	// SkipTokens consumes up to n tokens.
	SkipTokens(n int)
	// PeekAllTokens rejoins up to limit remaining tokens for messages.
	PeekAllTokens(limit int) string
	// ValueFromToken resolves token to a value, or reports that the token
	// is a name rather than a value.
	ValueFromToken(token string, values *namedvalues.Values) (string, bool)
	// NamePrefixRequired is the prefix names carry in this source.
	NamePrefixRequired() string
}

// Expander resolves @file references inside values.
type Expander interface {
	ExpandAtFileValue(value string, values *namedvalues.Values) string
}

type options struct {
	prefix    string
	prefixSet bool
	program   string
	expander  Expander
}

// Option configures a source.
type Option func(*options)

// WithNamePrefix overrides the name prefix ("--" for command lines).
func WithNamePrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
		o.prefixSet = true
	}
}

// WithProgramName lets a leading program-name token be dropped.
func WithProgramName(name string) Option {
	return func(o *options) { o.program = name }
}

// WithExpander sets the resolver for @file values.
func WithExpander(e Expander) Option {
	return func(o *options) { o.expander = e }
}

func buildOptions(defaultPrefix string, opts []Option) options {
	o := options{prefix: defaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) expand(value string, values *namedvalues.Values) string {
	if o.expander == nil {
		return value
	}
	return o.expander.ExpandAtFileValue(value, values)
}

// queue is the cursor shared by every source.
type queue struct {
	tokens []string
}

func (q *queue) PeekNextToken(skip int) (string, bool) {
	if skip < 0 || skip >= len(q.tokens) {
		return "", false
	}
	return q.tokens[skip], true
}

func (q *queue) PopNextToken() (string, bool) {
	token, ok := q.PeekNextToken(0)
	if ok {
		q.tokens = q.tokens[1:]
	}
	return token, ok
}

func (q *queue) SkipTokens(n int) {
	n = min(n, len(q.tokens))
	if n > 0 {
		q.tokens = q.tokens[n:]
	}
}
