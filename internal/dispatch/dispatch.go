// Package dispatch resolves a command name from a token source and drives
// the value tables registered for it: defaults file, @file includes,
// ini.file content, help capture and invalid-argument reporting.
//
// A Dispatcher holds per-parse state and is not safe for concurrent use;
// build one per command line.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/files"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/parser"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// DefaultMaxIncludeDepth bounds nested @file and ini.file content.
const DefaultMaxIncludeDepth = 16

// NoDefaultsToken suppresses the defaults file when it follows the command.
const NoDefaultsToken = "--nodefaults"

// Files is the file access the dispatcher needs.
type Files interface {
	parser.Files
	FindFileInConfigPath(name string, values *namedvalues.Values) (string, bool)
}

// Options configures a Dispatcher.
type Options struct {
	ProgramName     string
	Files           Files
	Logger          *slog.Logger
	MaxIncludeDepth int
	// NoDefaults skips the defaults file for every command.
	NoDefaults bool
	// OnInclude is called with each file read as directive lines.
	OnInclude func(path string)
}

// Command is one resolvable command name.
type Command struct {
	Name           string
	ValuesRequired bool
}

// Route binds a command root ("search") to its command names and value
// tables.
type Route struct {
	Root     string
	Commands []Command
	// Partials are names that, when typed alone, ask for help instead of
	// failing as unknown.
	Partials []string
	// Table returns the value parsers for a resolved command.
	Table func(command string) parser.Parser
	// Parse, when set, replaces the standard name, defaults and values
	// sequence for this root.
	Parse func(d *Dispatcher, src tokens.Source, values *namedvalues.Values) bool
}

// Dispatcher parses whole command lines against registered routes.
type Dispatcher struct {
	opts   Options
	log    *slog.Logger
	routes map[string]*Route
	roots  []string

	state    State
	includes []string
	depth    int
}

// New builds a dispatcher with no routes.
func New(opts Options) *Dispatcher {
	if opts.ProgramName == "" {
		opts.ProgramName = "ai"
	}
	if opts.Files == nil {
		opts.Files = files.NewResolver(opts.ProgramName)
	}
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		opts:   opts,
		log:    log.With("component", "dispatch"),
		routes: make(map[string]*Route),
	}
}

// Register adds routes. A root may only be registered once.
func (d *Dispatcher) Register(routes ...Route) error {
	for _, r := range routes {
		if r.Root == "" || strings.Contains(r.Root, ".") {
			return fmt.Errorf("%w: bad command root %q", domain.ErrInvalidCatalog, r.Root)
		}
		if _, dup := d.routes[r.Root]; dup {
			return fmt.Errorf("%w: duplicate command root %q", domain.ErrInvalidCatalog, r.Root)
		}
		route := r
		d.routes[r.Root] = &route
		d.roots = append(d.roots, r.Root)
	}
	return nil
}

// ProgramName is the name used in hints and the defaults file name.
func (d *Dispatcher) ProgramName() string {
	return d.opts.ProgramName
}

// Files returns the file resolver in use.
func (d *Dispatcher) Files() Files {
	return d.opts.Files
}

// Roots returns the registered command roots in registration order.
func (d *Dispatcher) Roots() []string {
	return slices.Clone(d.roots)
}

// Commands returns every registered command name, sorted.
func (d *Dispatcher) Commands() []string {
	var names []string
	for _, r := range d.routes {
		for _, c := range r.Commands {
			names = append(names, c.Name)
		}
		if len(r.Commands) == 0 {
			names = append(names, r.Root)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Route returns the route registered for root.
func (d *Dispatcher) Route(root string) (*Route, bool) {
	r, ok := d.routes[root]
	return r, ok
}

// State reports how far the last parse got.
func (d *Dispatcher) State() State {
	return d.state
}

func (d *Dispatcher) setState(s State) {
	if d.state != s {
		d.log.Debug("state", "from", d.state.String(), "to", s.String())
	}
	d.state = s
}

// Parse tokenizes args as a command line and parses it.
func (d *Dispatcher) Parse(args []string, values *namedvalues.Values) bool {
	src := tokens.NewCmdLine(args, values,
		tokens.WithProgramName(d.opts.ProgramName),
		tokens.WithExpander(d.opts.Files))
	return d.ParseCommand(src, values)
}

// ParseCommand resolves the command and parses all its values. On failure
// the reason is left in the values' error slot, a help request, or both.
func (d *Dispatcher) ParseCommand(src tokens.Source, values *namedvalues.Values) bool {
	d.state = StateNoCommand
	d.includes = d.includes[:0]
	d.depth = 0

	token, ok := src.PeekNextToken(0)
	if !ok {
		values.RequestHelp()
		d.setState(StateHelp)
		return false
	}

	command := token
	if strings.HasPrefix(token, "@") {
		if _, more := src.PeekNextToken(1); !more {
			if name := d.commandFromFile(token, values); name != "" {
				command = name
				_ = values.Add(namedvalues.KeyCommand, name)
				_ = values.Add(namedvalues.KeyNoDefaults, "true")
			}
		}
	}

	if d.dispatch(src, values) {
		d.setState(StateDone)
		return true
	}
	if values.HelpRequested() && !values.HasError() {
		d.setState(StateHelp)
		return false
	}

	root, _, _ := strings.Cut(command, ".")
	switch root {
	case "-?", "-h", "--?", "--help":
		values.RequestHelp()
		d.setState(StateHelp)
		return false
	}

	if !values.HasError() {
		values.SetError(domain.NewParseError(domain.ErrUnknownCommand,
			"Unknown command: "+command,
			"SEE: "+d.opts.ProgramName+" help"))
	}
	values.RequestHelp()
	d.setState(StateError)
	d.log.Debug("parse failed", "command", command, "error", values.Err())
	return false
}

// commandFromFile reads "x.command=NAME" from the first line of an @file.
func (d *Dispatcher) commandFromFile(token string, values *namedvalues.Values) string {
	content := d.opts.Files.ExpandAtFileValue(token, values)
	line, _, _ := strings.Cut(strings.ReplaceAll(content, "\r", "\n"), "\n")
	name, ok := strings.CutPrefix(strings.TrimSpace(line), namedvalues.KeyCommand+"=")
	if !ok {
		return ""
	}
	return name
}

func (d *Dispatcher) dispatch(src tokens.Source, values *namedvalues.Values) bool {
	command := values.Command()
	if command == "" {
		command, _ = src.PeekNextToken(0)
	}
	root, _, _ := strings.Cut(command, ".")

	route, ok := d.routes[root]
	if !ok {
		return false
	}
	if route.Parse != nil {
		return route.Parse(d, src, values)
	}

	if !d.ParseCommandName(src, values, route.Commands, route.Partials) {
		return false
	}
	table := route.table(values.Command())
	return d.ParseDefaults(src, values, table) && d.ParseAllValues(src, values, table)
}

// ParseCommandValues parses values for a command already recorded in
// values, without resolving a name or applying defaults.
func (d *Dispatcher) ParseCommandValues(src tokens.Source, values *namedvalues.Values) bool {
	d.state = StateDefaultsApplied
	route, ok := d.routes[values.CommandRoot()]
	if !ok {
		return false
	}
	if d.ParseAllValues(src, values, route.table(values.Command())) {
		d.setState(StateDone)
		return true
	}
	d.setState(StateError)
	return false
}

func (r *Route) table(command string) parser.Parser {
	if r.Table != nil {
		if t := r.Table(command); t != nil {
			return t
		}
	}
	return parser.NewList()
}

// ParseCommandName resolves one of commands from the next tokens and
// records it under x.command. When none matches, a matching partial turns
// the parse into a help request instead.
func (d *Dispatcher) ParseCommandName(src tokens.Source, values *namedvalues.Values, commands []Command, partials []string) bool {
	parsed := true
	for _, c := range commands {
		parsed = d.parseCommandName(src, values, c.Name, c.ValuesRequired)
		if parsed {
			break
		}
	}

	if parsed {
		values.Freeze(namedvalues.KeyCommand)
		d.setState(StateCommandNamed)
		return true
	}
	if values.HelpRequested() {
		return false
	}

	for _, name := range partials {
		if !d.parseCommandName(src, values, name, false) {
			continue
		}
		values.RequestHelp()
		if !values.Contains(namedvalues.KeyVerbose) {
			_ = values.Add(namedvalues.KeyVerbose, "false")
		}
		if token, ok := src.PeekNextToken(0); ok && !strings.HasPrefix(token, "@") && !strings.HasPrefix(token, "-") {
			values.SetError(domain.NewParseError(domain.ErrUnknownCommand,
				"Unknown command: "+token,
				"SEE: "+d.opts.ProgramName+" help "+values.CommandForDisplay()))
		}
		break
	}
	return false
}

func (d *Dispatcher) parseCommandName(src tokens.Source, values *namedvalues.Values, name string, valuesRequired bool) bool {
	if name == values.Command() {
		return true
	}

	parsed := strings.Contains(name, ".") && d.parseDottedName(src, values, name)
	if !parsed {
		if value, _ := src.PeekNextTokenValue(0, values); value == name {
			src.SkipTokens(1)
			_ = values.Add(namedvalues.KeyCommand, name)
		}
		parsed = values.Command() == name
	}
	if !parsed {
		return false
	}

	if _, more := src.PeekNextToken(0); !more && valuesRequired {
		values.RequestHelp()
		return false
	}
	return true
}

func (d *Dispatcher) parseDottedName(src tokens.Source, values *namedvalues.Values, name string) bool {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if value, _ := src.PeekNextTokenValue(i, values); value != part {
			return false
		}
	}
	src.SkipTokens(len(parts))
	_ = values.Add(namedvalues.KeyCommand, name)
	return true
}

// ParseDefaults applies {program}.defaults from the config path, unless the
// command is config or help, defaults are switched off, or the next token
// is --nodefaults.
func (d *Dispatcher) ParseDefaults(src tokens.Source, values *namedvalues.Values, table parser.Parser) bool {
	defer d.setState(StateDefaultsApplied)

	command := values.Command()
	if command == "config" || command == "help" || d.opts.NoDefaults || values.Bool(namedvalues.KeyNoDefaults, false) {
		return true
	}
	if token, _ := src.PeekNextToken(0); token == NoDefaultsToken {
		src.SkipTokens(1)
		return true
	}

	name := d.opts.ProgramName + ".defaults"
	path, ok := d.opts.Files.FindFileInConfigPath(name, values)
	if !ok {
		return true
	}
	d.log.Debug("defaults", "path", path)
	return d.parseIniFile(path, values, table)
}

// ParseAllValues parses every remaining token against table. A bare
// "help" anywhere among the values captures the rest of the line as the
// help topic.
func (d *Dispatcher) ParseAllValues(src tokens.Source, values *namedvalues.Values, table parser.Parser) bool {
	parsed := true
	for {
		token, ok := src.PeekNextToken(0)
		if !ok {
			break
		}
		if token == "help" {
			src.SkipTokens(1)
			values.RequestHelp()
			_ = values.Add(namedvalues.KeyHelpMore, src.PeekAllTokens(tokens.All))
			src.SkipTokens(tokens.All)
			break
		}
		if strings.HasPrefix(token, "@") {
			parsed = d.parseAtFileToken(src, values, table)
		} else {
			parsed = d.parseNextValue(src, values, table)
		}
		if !parsed {
			break
		}
	}

	if _, more := src.PeekNextToken(0); !parsed && more {
		d.InvalidArguments(src, values, "command line argument(s)")
	}
	if parsed {
		d.setState(StateValuesParsed)
	}
	return parsed
}

func (d *Dispatcher) parseNextValue(src tokens.Source, values *namedvalues.Values, table parser.Parser) bool {
	parsed, err := table.Parse(src, values)
	if err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) && pe.Hint == "" {
			pe.Hint = d.commandHint(values)
		}
		if !values.HasError() {
			values.SetError(err)
		}
		return false
	}

	if parsed && values.Contains(namedvalues.KeyIniFile) {
		content := values.Get(namedvalues.KeyIniFile)
		values.Reset(namedvalues.KeyIniFile)
		parsed = d.parseLines(content, values, table)
	}

	if parsed && values.HelpRequested() {
		_ = values.Add(namedvalues.KeyHelpMore, src.PeekAllTokens(tokens.All))
		src.SkipTokens(tokens.All)
	}
	return parsed
}

// InvalidArguments records an invalid-arguments error naming the unparsed
// remainder, unless an error is already recorded.
func (d *Dispatcher) InvalidArguments(src tokens.Source, values *namedvalues.Values, kind string) {
	if values.HasError() {
		return
	}
	values.SetError(domain.NewParseError(domain.ErrInvalidArguments,
		fmt.Sprintf("Invalid %s at \"%s\".", kind, src.PeekAllTokens(tokens.All)),
		d.commandHint(values)))
}

// commandHint points at the help for the command being parsed.
func (d *Dispatcher) commandHint(values *namedvalues.Values) string {
	return fmt.Sprintf("SEE: %s help %s", d.opts.ProgramName, values.CommandForDisplay())
}
