package tokens

import (
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// DefaultNamePrefix is the prefix named options carry on a command line.
const DefaultNamePrefix = "--"

// globalSwitches are bare words accepted before the command name.
var globalSwitches = map[string]string{
	"debug":   namedvalues.KeyDebug,
	"cls":     "x.cls",
	"pause":   "x.pause",
	"quiet":   namedvalues.KeyQuiet,
	"verbose": namedvalues.KeyVerbose,
}

// CmdLine is a Source over process arguments.
type CmdLine struct {
	queue
	opts options
}

// NewCmdLine builds a command-line source. Leading global switches (and the
// program's own name) are consumed into values before the first real token.
// A --dashed-name without ';' is rewritten to --dashed.name.
func NewCmdLine(args []string, values *namedvalues.Values, opts ...Option) *CmdLine {
	c := &CmdLine{opts: buildOptions(DefaultNamePrefix, opts)}
	c.tokens = c.normalize(args)

	for {
		token, ok := c.PeekNextToken(0)
		if !ok {
			break
		}
		if key, isSwitch := globalSwitches[token]; isSwitch {
			_ = values.Add(key, "true")
		} else if token != c.opts.program || token == "" {
			break
		}
		c.PopNextToken()
	}
	return c
}

func (c *CmdLine) normalize(args []string) []string {
	prefix := c.opts.prefix
	out := make([]string, 0, len(args))
	for _, token := range args {
		if c.isName(token) && strings.Contains(token[len(prefix):], "-") {
			token = prefix + strings.ReplaceAll(token[len(prefix):], "-", ".")
		}
		out = append(out, token)
	}
	return out
}

// isName reports whether token is an option name rather than a value:
// it carries the prefix and is not a ';' list.
func (c *CmdLine) isName(token string) bool {
	prefix := c.opts.prefix
	return prefix != "" && strings.HasPrefix(token, prefix) && !strings.Contains(token, ";")
}

func (c *CmdLine) PeekNextTokenValue(skip int, values *namedvalues.Values) (string, bool) {
	token, ok := c.PeekNextToken(skip)
	if !ok {
		return "", false
	}
	return c.ValueFromToken(token, values)
}

func (c *CmdLine) PopNextTokenValue(values *namedvalues.Values) (string, bool) {
	token, ok := c.PopNextToken()
	if !ok {
		return "", false
	}
	return c.ValueFromToken(token, values)
}

func (c *CmdLine) PeekAllTokens(limit int) string {
	n := min(limit, len(c.tokens))
	return strings.TrimSpace(strings.Join(c.tokens[:n], " "))
}

func (c *CmdLine) ValueFromToken(token string, values *namedvalues.Values) (string, bool) {
	if c.isName(token) {
		return "", false
	}
	return c.opts.expand(token, values), true
}

func (c *CmdLine) NamePrefixRequired() string {
	return c.opts.prefix
}
