package dispatch

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/files"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/parser"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// parseAtFileToken parses the file named by an "@name" command-line token
// as directive lines. A name not found on the config path is expanded like
// any other value ("@-" reads stdin) and the result parsed as lines.
func (d *Dispatcher) parseAtFileToken(src tokens.Source, values *namedvalues.Values, table parser.Parser) bool {
	token, _ := src.PeekNextToken(0)
	name := strings.TrimPrefix(token, "@")

	var parsed bool
	if path, ok := d.opts.Files.FindFileInConfigPath(name, values); ok && name != files.StdinName {
		parsed = d.parseIniFile(path, values, table)
	} else {
		content, _ := src.PeekNextTokenValue(0, values)
		parsed = d.parseLines(content, values, table)
	}
	if parsed {
		src.SkipTokens(1)
	}
	return parsed
}

// parseIniFile parses a file found on the config path. A file already
// being parsed further up the include chain is a cycle.
func (d *Dispatcher) parseIniFile(path string, values *namedvalues.Values, table parser.Parser) bool {
	if slices.Contains(d.includes, path) {
		chain := strings.Join(append(slices.Clone(d.includes), path), " -> ")
		values.SetError(domain.NewParseError(domain.ErrIncludeCycle,
			fmt.Sprintf("@FILE includes itself: %s", chain), ""))
		return false
	}

	content, err := d.opts.Files.ReadAllText(path)
	if err != nil {
		values.SetError(domain.NewParseError(domain.ErrFileNotFound,
			fmt.Sprintf("Cannot read @FILE %q: %v", path, err), ""))
		return false
	}

	d.includes = append(d.includes, path)
	defer func() { d.includes = d.includes[:len(d.includes)-1] }()

	d.log.Debug("include", "path", path, "depth", len(d.includes))
	if d.opts.OnInclude != nil {
		d.opts.OnInclude(path)
	}
	return d.parseLines(content, values, table)
}

// parseLines parses directive content one line at a time. A line "@name"
// naming a file on the config path includes that file; any other line is
// an independent token group.
func (d *Dispatcher) parseLines(content string, values *namedvalues.Values, table parser.Parser) bool {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.opts.MaxIncludeDepth {
		values.SetError(domain.NewParseError(domain.ErrIncludeDepth,
			fmt.Sprintf("@FILE content nested deeper than %d levels", d.opts.MaxIncludeDepth), ""))
		return false
	}

	lines := strings.FieldsFunc(content, func(c rune) bool { return c == '\r' || c == '\n' })
	for _, line := range lines {
		var parsed bool
		if name, ok := strings.CutPrefix(line, "@"); ok {
			if path, found := d.opts.Files.FindFileInConfigPath(name, values); found && name != files.StdinName {
				parsed = d.parseIniFile(path, values, table)
				if !parsed {
					return false
				}
				continue
			}
		}
		parsed = d.parseIniLine(line, values, table)
		if !parsed {
			return false
		}
	}
	return true
}

func (d *Dispatcher) parseIniLine(line string, values *namedvalues.Values, table parser.Parser) bool {
	src := tokens.NewIniLine(line, tokens.WithExpander(d.opts.Files))

	parsed := true
	for {
		if _, ok := src.PeekNextToken(0); !ok {
			break
		}
		if parsed = d.parseNextValue(src, values, table); !parsed {
			break
		}
	}

	if _, more := src.PeekNextToken(0); !parsed && more {
		d.InvalidArguments(src, values, "@FILE content")
	}
	return parsed
}
