package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/Azure/azure-ai-cli-sub003/internal/dispatch"
	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/parser"
)

const (
	maxDisplayValue = 100
	maxSuggestions  = 3
)

// styles renders against one writer, so piped output stays plain.
type styles struct {
	title lipgloss.Style
	err   lipgloss.Style
	hint  lipgloss.Style
	key   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true),
		err:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		hint:  r.NewStyle().Faint(true),
		key:   r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// ─── Banner & Values ────────────────────────────────────────────────────────

func (a *App) banner(values *namedvalues.Values) {
	if values.Bool(namedvalues.KeyQuiet, false) {
		return
	}
	st := newStyles(a.out)
	name := strings.ToUpper(a.cfg.Program.Name)
	fmt.Fprintln(a.out, st.title.Render(fmt.Sprintf("%s - Azure AI CLI, Version %s", name, a.version)))
	fmt.Fprintln(a.out)
}

// displayValues lists the parsed values when verbose output was asked for
// and quiet was not.
func (a *App) displayValues(values *namedvalues.Values) {
	if values.Bool(namedvalues.KeyQuiet, false) || !values.Bool(namedvalues.KeyVerbose, false) {
		return
	}
	st := newStyles(a.out)
	names := values.Names()
	sort.Strings(names)

	shown := 0
	for _, name := range names {
		if name == namedvalues.KeyHelp {
			continue
		}
		fmt.Fprintf(a.out, "  %s=%s\n", st.key.Render(name), displayValue(name, values.Get(name)))
		shown++
	}
	if shown > 0 {
		fmt.Fprintln(a.out)
	}
}

// displayValue masks secrets and shortens long or multi-line values.
func displayValue(name, value string) string {
	value = maskValue(name, value)

	var lines []string
	for _, line := range strings.FieldsFunc(value, func(r rune) bool { return r == '\r' || r == '\n' }) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	first := lines[0]
	switch {
	case len(lines) > 1:
		return fmt.Sprintf("%q (+%d line(s))", truncate(first)+"...", len(lines)-1)
	case len(value) > maxDisplayValue:
		return fmt.Sprintf("%q (+%d char(s))", truncate(first)+"...", len(value)-maxDisplayValue)
	}
	return first
}

func truncate(s string) string {
	if len(s) <= maxDisplayValue {
		return s
	}
	return s[:maxDisplayValue]
}

// maskValue hides passwords and keys that look like service keys.
func maskValue(name, value string) string {
	secret := strings.HasSuffix(name, ".password")
	if strings.HasSuffix(name, ".key") && len(name) > len(".key") {
		_, err := uuid.Parse(value)
		secret = secret || (len(value) == 32 && err == nil) || strings.Contains(name, "embedded")
	}
	if !secret {
		return value
	}
	if len(value) > 4 {
		value = value[:4]
	}
	return value + strings.Repeat("*", 28)
}

// maskedLines renders the store as name=value lines with secrets masked.
func maskedLines(values *namedvalues.Values) []string {
	names := values.Names()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+"="+maskValue(name, values.Get(name)))
	}
	return lines
}

// ─── Errors ─────────────────────────────────────────────────────────────────

func (a *App) renderError(err error) {
	st := newStyles(a.errOut)
	fmt.Fprintln(a.errOut, st.err.Render("ERROR: "+err.Error()))
}

// renderParseError shows the recorded parse error, its hint and, for an
// unknown command, the closest known command names.
func (a *App) renderParseError(d *dispatch.Dispatcher, values *namedvalues.Values, args []string) {
	st := newStyles(a.errOut)
	fmt.Fprintln(a.errOut, st.err.Render("ERROR: Parsing command line!!"))
	fmt.Fprintln(a.errOut)

	err := values.Err()
	message, hint := err.Error(), ""
	var pe *domain.ParseError
	if errors.As(err, &pe) {
		message, hint = pe.Message, pe.Hint
	}
	fmt.Fprintln(a.errOut, "  "+strings.ReplaceAll(message, "\n", "\n  "))

	if errors.Is(err, domain.ErrUnknownCommand) {
		if guesses := suggest(commandWords(args, a.cfg.Program.Name), d.Commands()); len(guesses) > 0 {
			fmt.Fprintln(a.errOut)
			fmt.Fprintln(a.errOut, "  Did you mean?")
			for _, g := range guesses {
				fmt.Fprintf(a.errOut, "    %s %s\n", a.cfg.Program.Name, strings.ReplaceAll(g, ".", " "))
			}
		}
	}
	if hint != "" {
		fmt.Fprintln(a.errOut)
		fmt.Fprintln(a.errOut, "  "+st.hint.Render(hint))
	}
	fmt.Fprintln(a.errOut)
}

// commandWords joins the leading bare words of args, after the global
// switches, into a dotted command name.
func commandWords(args []string, program string) string {
	var words []string
	for _, arg := range args {
		if len(words) == 0 && (arg == program || slices.Contains(globalSwitches, arg)) {
			continue
		}
		if strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "@") {
			break
		}
		words = append(words, arg)
	}
	return strings.Join(words, ".")
}

// suggest returns up to maxSuggestions command names fuzzily matching
// pattern, best first.
func suggest(pattern string, commands []string) []string {
	if pattern == "" {
		return nil
	}
	var out []string
	for _, m := range fuzzy.Find(pattern, commands) {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// ─── Help ───────────────────────────────────────────────────────────────────

// renderHelp prints a help file for the topic when one is on the data
// path, and a generated command listing otherwise.
func (a *App) renderHelp(d *dispatch.Dispatcher, values *namedvalues.Values) {
	program := a.cfg.Program.Name
	st := newStyles(a.out)

	if text, ok := values.Lookup(namedvalues.KeyHelpText); ok && text != "" {
		a.listCommands(st, fmt.Sprintf("Commands matching %q", text), suggestAll(text, d.Commands()))
		return
	}
	if topic, ok := values.Lookup(namedvalues.KeyHelpTopic); ok {
		var found []string
		for _, c := range d.Commands() {
			if topic == "*" || strings.Contains(c, topic) {
				found = append(found, c)
			}
		}
		a.listCommands(st, "Help topics", found)
		return
	}

	topic := helpTopic(values)
	name := "help"
	if topic != "" {
		name = "help/" + topic
	}
	if path, ok := a.files.FindFileInDataPath(name, values); ok {
		if text, err := a.files.ReadAllText(path); err == nil {
			fmt.Fprintln(a.out, text)
			return
		}
	}

	fmt.Fprintln(a.out, st.title.Render("USAGE:")+" "+program+" <command> [...]")
	fmt.Fprintln(a.out)
	if options := commandOptions(d, topic); len(options) > 0 {
		fmt.Fprintln(a.out, st.title.Render("OPTIONS:"))
		fmt.Fprintln(a.out)
		for _, o := range options {
			fmt.Fprintln(a.out, "  "+o)
		}
		fmt.Fprintln(a.out)
	}
	var found []string
	for _, c := range d.Commands() {
		if topic == "" || c == topic || strings.HasPrefix(c, topic+".") {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		found = d.Roots()
	}
	a.listCommands(st, "COMMANDS", found)
	fmt.Fprintln(a.out, st.hint.Render("SEE: "+program+" help find <text>"))
}

// helpTopic is the command the help is about: the one named after
// "help", or the command being parsed when help came from --? or a
// partial command name.
func helpTopic(values *namedvalues.Values) string {
	if command := values.Get(namedvalues.KeyHelpCommand); command != "" {
		return command
	}
	if command := values.Command(); command != "help" {
		return command
	}
	return ""
}

// commandOptions lists the spellings of every option the command's value
// table accepts, one line per option. Internal x.* keys are left out.
func commandOptions(d *dispatch.Dispatcher, command string) []string {
	root, _, _ := strings.Cut(command, ".")
	route, ok := d.Route(root)
	if !ok || route.Table == nil || !slices.ContainsFunc(route.Commands, func(c dispatch.Command) bool { return c.Name == command }) {
		return nil
	}
	table := route.Table(command)
	if table == nil {
		return nil
	}

	var out []string
	parser.Walk(table, func(p *parser.Pattern) {
		if strings.HasPrefix(p.Descriptor().Name, "x.") {
			return
		}
		if usage := p.Usage("--"); len(usage) > 0 {
			out = append(out, strings.Join(usage, ", "))
		}
	})
	return slices.Compact(out)
}

func suggestAll(text string, commands []string) []string {
	var out []string
	for _, m := range fuzzy.Find(text, commands) {
		out = append(out, m.Str)
	}
	return out
}

func (a *App) listCommands(st styles, title string, commands []string) {
	fmt.Fprintln(a.out, st.title.Render(title+":"))
	fmt.Fprintln(a.out)
	if len(commands) == 0 {
		fmt.Fprintln(a.out, "  (none)")
	}
	for _, c := range commands {
		fmt.Fprintf(a.out, "  %s %s\n", a.cfg.Program.Name, strings.ReplaceAll(c, ".", " "))
	}
	fmt.Fprintln(a.out)
}
