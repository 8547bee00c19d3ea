// Package files resolves the @file references used throughout parsing.
//
// Lookups walk a config search path made of "hive" dot-directories (.ai by
// default), each contributing its data/, config/ and root directories.
// Within each directory a command- or region-scoped copy of a file
// (<region>.<command>.<name>, <region>.<name>, <command>.<name>) wins over
// the plain name.
package files

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// StdinName is the file name that reads standard input.
const StdinName = "-"

// Scope keys consulted when looking files up.
const (
	KeyScopeHive    = "x.config.scope.hive"
	KeyScopeCommand = "x.config.scope.command"
	KeyScopeRegion  = "x.config.scope.region"
	KeyRegion       = "service.config.region"
)

// localSearchDepth bounds the walk up from the working directory.
const localSearchDepth = 6

// Resolver finds and reads files on the config and data search paths.
// It is configured once per process; the search paths are explicit inputs,
// never ambient state.
type Resolver struct {
	program    string
	dotDir     string
	configDirs []string
	dataDirs   []string
	hives      map[string]string

	stdin     io.Reader
	stdinRead bool
	stdinText string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConfigDirs replaces the default hive directories.
func WithConfigDirs(dirs ...string) Option {
	return func(r *Resolver) { r.configDirs = dirs }
}

// WithDataDirs prepends extra data directories.
func WithDataDirs(dirs ...string) Option {
	return func(r *Resolver) { r.dataDirs = append(dirs, r.dataDirs...) }
}

// WithHive maps a hive name ("user", "global", ...) to a directory.
func WithHive(name, dir string) Option {
	return func(r *Resolver) { r.hives[name] = dir }
}

// WithStdin sets the reader behind "@-".
func WithStdin(in io.Reader) Option {
	return func(r *Resolver) { r.stdin = in }
}

// NewResolver builds a resolver for program. Hive directories default to the
// .<program> directories found walking up from the working directory, then
// the user's home.
func NewResolver(program string, opts ...Option) *Resolver {
	r := &Resolver{
		program: program,
		dotDir:  "." + program,
		hives:   make(map[string]string),
		stdin:   os.Stdin,
	}

	if home, err := os.UserHomeDir(); err == nil {
		r.hives["user"] = filepath.Join(home, r.dotDir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		r.hives["global"] = filepath.Join(dir, r.dotDir)
	}
	if exe, err := os.Executable(); err == nil {
		r.hives["system"] = filepath.Join(filepath.Dir(exe), r.dotDir)
	}
	r.hives["local"] = r.dotDir

	r.configDirs = append(localDotDirs(r.dotDir), r.hives["user"])
	r.dataDirs = []string{".", "..", filepath.Join("..", ".."), filepath.Join("..", "..", ".."), filepath.Join("..", "..", "..", "..")}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// localDotDirs returns every existing dotDir from . up a few parents.
func localDotDirs(dotDir string) []string {
	var dirs []string
	dir := "."
	for i := 0; i < localSearchDepth; i++ {
		check := filepath.Join(dir, dotDir)
		if isDir(check) {
			dirs = append(dirs, check)
		}
		dir = filepath.Join(dir, "..")
	}
	return dirs
}

// Program returns the program name the resolver was built for.
func (r *Resolver) Program() string {
	return r.program
}

// HiveDir maps a hive name to its directory. Unknown names are taken as
// literal directories.
func (r *Resolver) HiveDir(hive string) string {
	if dir, ok := r.hives[hive]; ok {
		return dir
	}
	if hive == "." {
		return r.hives["local"]
	}
	return filepath.Clean(hive)
}

// HiveFromFileName names the hive a path lives in, or "" when it lives in
// none of them.
func (r *Resolver) HiveFromFileName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	for _, hive := range []string{"local", "system", "global", "user"} {
		dir, ok := r.hives[hive]
		if !ok || dir == "" {
			continue
		}
		if base, err := filepath.Abs(dir); err == nil && strings.HasPrefix(abs, base+string(filepath.Separator)) {
			return hive
		}
	}
	return ""
}

// ConfigPath returns the directories searched for config files, in order.
// A hive selected with x.config.scope.hive narrows the path to that hive.
func (r *Resolver) ConfigPath(values *namedvalues.Values) []string {
	if hive := scopeValue(values, KeyScopeHive, ""); hive != "" {
		return expandDotDirs(r.HiveDir(hive))
	}
	path := []string{"."}
	path = append(path, expandDotDirs(r.configDirs...)...)
	return append(path, ".x")
}

// DataPath returns the directories searched for data files.
func (r *Resolver) DataPath(values *namedvalues.Values) []string {
	return append(append([]string{}, r.dataDirs...), r.ConfigPath(values)...)
}

// expandDotDirs turns each hive into its data/, config/ and root dirs.
func expandDotDirs(dirs ...string) []string {
	var out []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		out = append(out, filepath.Join(dir, "data"), filepath.Join(dir, "config"), dir)
	}
	return out
}

// ConfigOutputDir is where config --set and --add write. It is created when
// missing.
func (r *Resolver) ConfigOutputDir(values *namedvalues.Values) (string, error) {
	dir := ""
	if hive := scopeValue(values, KeyScopeHive, ""); hive != "" {
		dir = r.HiveDir(hive)
	} else if local := localDotDirs(r.dotDir); len(local) > 0 {
		dir = local[0]
	} else if user := r.hives["user"]; isDir(user) {
		dir = user
	}

	if dir == "" {
		return ".", nil
	}
	if filepath.Base(dir) == r.dotDir {
		dir = filepath.Join(dir, "data")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func scopeValue(values *namedvalues.Values, key, def string) string {
	if values == nil {
		return def
	}
	return values.GetOrDefault(key, def)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
