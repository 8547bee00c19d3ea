package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// FindFileInConfigPath locates name on the config search path.
func (r *Resolver) FindFileInConfigPath(name string, values *namedvalues.Values) (string, bool) {
	return r.findInPath(name, values, r.ConfigPath(values))
}

// FindFileInDataPath locates name on the data search path.
func (r *Resolver) FindFileInDataPath(name string, values *namedvalues.Values) (string, bool) {
	return r.findInPath(name, values, r.DataPath(values))
}

func (r *Resolver) findInPath(name string, values *namedvalues.Values, dirs []string) (string, bool) {
	if name == StdinName {
		return name, true
	}
	if name == "" {
		return "", false
	}
	if values != nil {
		name = values.ReplaceValues(name)
	}
	if filepath.IsAbs(name) {
		return name, isFile(name)
	}

	command := r.commandScope(values)
	region := r.regionScope(values)
	for _, dir := range dirs {
		if found, ok := findInScope(dir, name, region, command); ok {
			return found, true
		}
	}
	return "", false
}

func (r *Resolver) commandScope(values *namedvalues.Values) string {
	if values == nil {
		return ""
	}
	def := values.Command()
	if def == "config" {
		def = ""
	}
	scope := values.GetOrDefault(KeyScopeCommand, def)
	root, _, _ := strings.Cut(scope, ".")
	return root
}

func (r *Resolver) regionScope(values *namedvalues.Values) string {
	if values == nil {
		return ""
	}
	return values.GetOrDefault(KeyScopeRegion, values.Get(KeyRegion))
}

func findInScope(dir, name, region, command string) (string, bool) {
	var candidates []string
	if region != "" && command != "" {
		candidates = append(candidates, region+"."+command+"."+name)
	}
	if region != "" {
		candidates = append(candidates, region+"."+name)
	}
	if command != "" {
		candidates = append(candidates, command+"."+name)
	}
	candidates = append(candidates, name)

	for _, c := range candidates {
		path := filepath.Join(dir, c)
		if isFile(path) {
			return path, true
		}
	}
	return "", false
}

// ExpandAtFileValue resolves a value written as @name:
//
//	@name    content of name found on the config path
//	@-       standard input
//	@@--x    the literal --x
//
// Anything else is returned unchanged.
func (r *Resolver) ExpandAtFileValue(value string, values *namedvalues.Values) string {
	name, ok := strings.CutPrefix(value, "@")
	if !ok {
		return value
	}
	if path, found := r.FindFileInConfigPath(name, values); found {
		if text, err := r.ReadAllText(path); err == nil {
			return text
		}
	}
	if literal, ok := strings.CutPrefix(value, "@@--"); ok {
		return "--" + literal
	}
	return value
}

// ReadAllText reads path ("-" for stdin) with surrounding line breaks trimmed.
func (r *Resolver) ReadAllText(path string) (string, error) {
	if path == StdinName {
		return r.readStdin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.Trim(string(data), "\r\n"), nil
}

// readStdin drains standard input once; later reads see the same text.
func (r *Resolver) readStdin() (string, error) {
	if !r.stdinRead {
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		r.stdinRead = true
		r.stdinText = strings.Trim(string(data), "\r\n")
	}
	return r.stdinText, nil
}

// FindFiles expands a ';' or newline separated list of glob patterns. A
// "**" path component matches any number of directories.
func (r *Resolver) FindFiles(patterns string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, item := range strings.FieldsFunc(patterns, func(c rune) bool {
		return c == ';' || c == '\r' || c == '\n'
	}) {
		for _, path := range globFiles(item) {
			if !seen[path] {
				seen[path] = true
				found = append(found, path)
			}
		}
	}
	return found
}

// FindFilesInConfigPath globs pattern inside every config directory.
func (r *Resolver) FindFilesInConfigPath(pattern string, values *namedvalues.Values) []string {
	var found []string
	seen := make(map[string]bool)
	for _, dir := range r.ConfigPath(values) {
		for _, m := range globFiles(filepath.Join(dir, pattern)) {
			if !seen[m] {
				seen[m] = true
				found = append(found, m)
			}
		}
	}
	return found
}

func globFiles(pattern string) []string {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}
