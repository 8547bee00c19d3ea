package namedvalues

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Well-known keys written by the dispatcher and the common parsers.
const (
	KeyCommand      = "x.command"
	KeyNoDefaults   = "x.command.nodefaults"
	KeySaveAs       = "x.command.save.as.file"
	KeyExpandFile   = "x.command.expand.file.name"
	KeyRepeat       = "x.command.repeat"
	KeyMax          = "x.command.max"
	KeyDebug        = "x.debug"
	KeyQuiet        = "x.quiet"
	KeyVerbose      = "x.verbose"
	KeyIniFile      = "ini.file"
	KeyHelp         = "display.help"
	KeyHelpMore     = "display.help.more"
	KeyHelpCommand  = "display.help.command"
	KeyHelpOption   = "display.help.option"
	KeyHelpTopic    = "display.help.topic"
	KeyHelpText     = "display.help.text"
	KeyHelpExpand   = "display.help.expand"
	KeyForEachCount = "foreach.count"
)

// GetOrDefault returns the value for name, or def when unset or empty.
func (v *Values) GetOrDefault(name, def string) string {
	if value := v.Get(name); value != "" {
		return value
	}
	return def
}

// Int returns the value for name parsed as an int, or def.
func (v *Values) Int(name string, def int) int {
	n, err := strconv.Atoi(v.Get(name))
	if err != nil {
		return def
	}
	return n
}

// Bool returns the value for name parsed as a bool, or def.
func (v *Values) Bool(name string, def bool) bool {
	b, err := strconv.ParseBool(v.Get(name))
	if err != nil {
		return def
	}
	return b
}

// ReplaceValues substitutes every {name} in s with the stored value. Unknown
// names are left as written.
func (v *Values) ReplaceValues(s string) string {
	if !strings.Contains(s, "{") || !strings.Contains(s, "}") {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		j := -1
		if ch == '{' {
			if k := strings.IndexByte(s[i+1:], '}'); k >= 0 {
				j = i + 1 + k
			}
		}
		if j < 0 {
			sb.WriteByte(ch)
			continue
		}
		sb.WriteString(v.GetOrDefault(s[i+1:j], s[i:j+1]))
		i = j
	}
	return sb.String()
}

// SaveAs writes the named entries (all entries when names is empty) to path
// as name=value lines. Values holding a newline or tab are spilled into a
// side file referenced as @file. It returns every file written.
func (v *Values) SaveAs(path string, names ...string) ([]string, error) {
	if len(names) == 0 {
		names = v.Names()
	}

	written := []string{path}
	var sb strings.Builder
	for _, name := range names {
		value := v.Get(name)
		if strings.ContainsAny(value, "\n\t") {
			side := path + "." + name
			if err := os.WriteFile(side, []byte(value), 0644); err != nil {
				return written, fmt.Errorf("save %s: %w", name, err)
			}
			fmt.Fprintf(&sb, "%s=@%s\n", name, side)
			written = append(written, side)
			continue
		}
		fmt.Fprintf(&sb, "%s=%s\n", name, value)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return written, fmt.Errorf("save values: %w", err)
	}
	return written, nil
}

// ─── Display Requests ───────────────────────────────────────────────────────

// RequestHelp flags that help should be displayed instead of running.
func (v *Values) RequestHelp() { _ = v.Add(KeyHelp, "true") }

// HelpRequested reports whether help display was requested.
func (v *Values) HelpRequested() bool { return v.Bool(KeyHelp, false) }

// ─── Command Name ───────────────────────────────────────────────────────────

// Command returns the resolved dotted command name.
func (v *Values) Command() string {
	return v.Get(KeyCommand)
}

// CommandRoot returns the first segment of the command name.
func (v *Values) CommandRoot() string {
	root, _, _ := strings.Cut(v.Command(), ".")
	return root
}

// CommandForDisplay returns the command name with spaces for dots.
func (v *Values) CommandForDisplay() string {
	return strings.ReplaceAll(v.Command(), ".", " ")
}
