package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/commands"
	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/files"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// runConfig sets, adds to, finds, clears or shows config files in the
// hive directories of the config search path.
func (a *App) runConfig(values *namedvalues.Values) error {
	atFile := values.Get(commands.KeyConfigAtFile)

	if set := values.Get(commands.KeyConfigSet); set != "" {
		return a.configSet(set, atFile, values)
	}
	if add := values.Get(commands.KeyConfigAdd); add != "" {
		return a.configAdd(add, atFile, values)
	}
	if find := values.Get(commands.KeyConfigFind); find != "" {
		return a.configFind(find, values)
	}
	if clearArg := values.Get(commands.KeyConfigClear); clearArg != "" {
		return a.configClear(clearArg, atFile, values)
	}
	if atFile != "" {
		return a.configShow(atFile, values)
	}
	return a.configShow(a.cfg.Program.Name+".defaults", values)
}

// configTarget splits "--set NAME VALUE" or "@NAME --set VALUE" into a
// file name and its content.
func configTarget(option, arg, atFile string) (string, string, error) {
	if atFile != "" {
		if strings.HasPrefix(arg, "@@") {
			arg = arg[1:]
		}
		return atFile, arg, nil
	}
	name, value, ok := strings.Cut(arg, "=")
	if !ok || name == "" || value == "" {
		return "", "", fmt.Errorf("%w: \"--%s %s\" is invalid; missing @NAME, NAME, or VALUE", domain.ErrConfigValue, option, arg)
	}
	return name, value, nil
}

func (a *App) configSet(arg, atFile string, values *namedvalues.Values) error {
	name, value, err := configTarget("set", arg, atFile)
	if err != nil {
		return err
	}
	path, err := a.configOutputFile(name, values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("config set: %w", err)
	}
	return a.configShowPath(path, "saved at", values)
}

func (a *App) configAdd(arg, atFile string, values *namedvalues.Values) error {
	name, value, err := configTarget("add", arg, atFile)
	if err != nil {
		return err
	}
	path, found := a.files.FindFileInConfigPath(strings.TrimPrefix(name, "@"), values)
	if !found {
		if path, err = a.configOutputFile(name, values); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("config add: %w", err)
	}
	if fi, statErr := f.Stat(); statErr == nil && fi.Size() > 0 {
		value = "\n" + value
	}
	_, err = f.WriteString(value)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("config add: %w", err)
	}
	return a.configShowPath(path, "updated at", values)
}

// configFind lists config files whose names contain pattern.
func (a *App) configFind(pattern string, values *namedvalues.Values) error {
	seen := make(map[string]bool)
	var found []string
	for _, p := range []string{pattern, "*." + pattern, pattern + ".*", "*" + pattern + "*"} {
		for _, path := range a.files.FindFilesInConfigPath(p, values) {
			slashed := filepath.ToSlash(path)
			if strings.Contains(slashed, "/help/") || strings.Contains(slashed, "/templates/") {
				continue
			}
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			if !seen[path] {
				seen[path] = true
				found = append(found, path)
			}
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("%w: '%s' not found", domain.ErrFileNotFound, pattern)
	}

	quiet := values.Bool(namedvalues.KeyQuiet, false)
	for _, path := range found {
		if quiet {
			fmt.Fprintln(a.out, path)
			continue
		}
		hive := ""
		if h := a.files.HiveFromFileName(path); h != "" {
			hive = " (" + h + ")"
		}
		fmt.Fprintf(a.out, "  %s (found at '%s')%s\n", filepath.Base(path), filepath.Dir(path), hive)
	}
	return nil
}

func (a *App) configClear(clearArg, atFile string, values *namedvalues.Values) error {
	name := a.cfg.Program.Name + ".defaults"
	switch {
	case atFile != "":
		name = strings.TrimPrefix(atFile, "@")
	case clearArg != "*":
		name = strings.TrimPrefix(clearArg, "@")
	}

	path, ok := a.files.FindFileInConfigPath(name, values)
	if !ok || path == files.StdinName {
		return fmt.Errorf("%w: cannot delete '@%s'; not found", domain.ErrFileNotFound, name)
	}
	if err := a.configShowPath(path, "deleted from", values); err != nil {
		return err
	}
	return os.Remove(path)
}

// configShow prints an @file's content, or searches for it when it does
// not exist.
func (a *App) configShow(atFile string, values *namedvalues.Values) error {
	name := strings.TrimPrefix(atFile, "@")
	if path, ok := a.files.FindFileInConfigPath(name, values); ok && path != files.StdinName {
		return a.configShowPath(path, "found at", values)
	}
	return a.configFind(name, values)
}

func (a *App) configShowPath(path, verb string, values *namedvalues.Values) error {
	text, err := a.files.ReadAllText(path)
	if err != nil {
		return err
	}
	if values.Bool(namedvalues.KeyQuiet, false) {
		fmt.Fprintln(a.out, text)
		return nil
	}

	hive := ""
	if h := a.files.HiveFromFileName(path); h != "" {
		hive = " (" + h + ")"
	}
	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	fmt.Fprintf(a.out, "%s (%s '%s')%s\n\n", filepath.Base(path), verb, dir, hive)
	fmt.Fprintln(a.out, "  "+strings.ReplaceAll(text, "\n", "\n  "))
	return nil
}

// configOutputFile is where --set and --add write name: the output hive
// directory, with the region and command scopes prefixed to the name.
func (a *App) configOutputFile(name string, values *namedvalues.Values) (string, error) {
	name = strings.TrimPrefix(name, "@")
	if command := values.Get(files.KeyScopeCommand); command != "" {
		name = command + "." + name
	}
	if region := values.Get(files.KeyScopeRegion); region != "" {
		name = region + "." + name
	}
	name = strings.ReplaceAll(name, "*.", "")

	dir, err := a.files.ConfigOutputDir(values)
	if err != nil {
		return "", fmt.Errorf("config output dir: %w", err)
	}
	return filepath.Join(dir, name), nil
}
