// Package commands holds the command tables of the ai command line: a
// declarative catalog embedded as YAML, the shared option groups, and the
// two commands (help, config) whose grammar does not fit a table.
package commands

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Azure/azure-ai-cli-sub003/internal/dispatch"
	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/parser"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the decoded command table file.
type Catalog struct {
	Roots []RootSpec `yaml:"roots"`
}

// RootSpec describes one command root and everything under it.
type RootSpec struct {
	Root     string        `yaml:"root"`
	Commands []CommandSpec `yaml:"commands"`
	Partials []string      `yaml:"partials"`
	Tables   []TableSpec   `yaml:"tables"`
}

// CommandSpec is one resolvable command name.
type CommandSpec struct {
	Name           string `yaml:"name"`
	ValuesRequired bool   `yaml:"values_required"`
}

// TableSpec is a set of options and groups, limited to Commands when set.
type TableSpec struct {
	Commands []string     `yaml:"commands"`
	Groups   []string     `yaml:"groups"`
	Options  []OptionSpec `yaml:"options"`
}

// OptionSpec is one option. Pin is a pointer so an explicit empty pinned
// value can be told apart from none.
type OptionSpec struct {
	Kind   string  `yaml:"kind"`
	Short  string  `yaml:"short"`
	Name   string  `yaml:"name"`
	Parts  string  `yaml:"parts"`
	Count  string  `yaml:"count"`
	Valid  string  `yaml:"valid"`
	Key    string  `yaml:"key"`
	Pin    *string `yaml:"pin"`
	PinKey string  `yaml:"pin_key"`
}

// Option kinds.
const (
	KindPattern = "pattern"
	KindMulti   = "multi"
)

// LoadCatalog decodes the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return DecodeCatalog(catalogYAML)
}

// DecodeCatalog decodes catalog YAML. Unknown fields are rejected so a
// misspelled option key fails loudly.
func DecodeCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return &c, nil
}

// Routes compiles every root into a dispatcher route. Each command's value
// table is built once here; files backs the foreach groups.
func (c *Catalog) Routes(files parser.Files) ([]dispatch.Route, error) {
	known := groups(files)
	routes := make([]dispatch.Route, 0, len(c.Roots))
	for _, root := range c.Roots {
		if len(root.Commands) == 0 {
			return nil, fmt.Errorf("%w: root %q has no commands", domain.ErrInvalidCatalog, root.Root)
		}

		route := dispatch.Route{Root: root.Root, Partials: root.Partials}
		tables := make(map[string]*parser.List, len(root.Commands))
		for _, cmd := range root.Commands {
			route.Commands = append(route.Commands, dispatch.Command{Name: cmd.Name, ValuesRequired: cmd.ValuesRequired})
			table, err := root.table(cmd.Name, known)
			if err != nil {
				return nil, err
			}
			tables[cmd.Name] = table
		}
		for _, t := range root.Tables {
			for _, name := range t.Commands {
				if _, ok := tables[name]; !ok {
					return nil, fmt.Errorf("%w: table names unknown command %q", domain.ErrInvalidCatalog, name)
				}
			}
		}

		route.Table = func(command string) parser.Parser {
			if t, ok := tables[command]; ok {
				return t
			}
			return nil
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// table builds the value table for one command: the x.command directive,
// then the options of every table that applies, then their groups.
func (r RootSpec) table(command string, known map[string]func(string) parser.Parser) (*parser.List, error) {
	list := parser.NewList(parser.Any1Value("", namedvalues.KeyCommand, "11"))

	var groupNames []string
	for _, t := range r.Tables {
		if len(t.Commands) > 0 && !slices.Contains(t.Commands, command) {
			continue
		}
		for _, o := range t.Options {
			p, err := o.compile()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidCatalog, command, err)
			}
			list.Add(p)
		}
		for _, g := range t.Groups {
			if !slices.Contains(groupNames, g) {
				groupNames = append(groupNames, g)
			}
		}
	}

	for _, g := range groupNames {
		build, ok := known[g]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %s", domain.ErrUnknownGroup, g, command)
		}
		list.Add(build(r.Root))
	}
	return list, nil
}

func (o OptionSpec) compile() (parser.Parser, error) {
	switch o.Kind {
	case "", KindPattern:
	case KindMulti:
		if _, err := parser.Compile(parser.Descriptor{Name: o.Name, Parts: o.Parts, Count: "0"}); err != nil {
			return nil, err
		}
		return parser.NewOptionX(o.Short, o.Name, o.Parts), nil
	default:
		return nil, fmt.Errorf("%w: %s: unknown kind %q", domain.ErrInvalidDescriptor, o.Name, o.Kind)
	}

	d := parser.Descriptor{
		Short:     o.Short,
		Name:      o.Name,
		Parts:     o.Parts,
		Count:     o.Count,
		Valid:     o.Valid,
		Key:       o.Key,
		PinnedKey: o.PinKey,
	}
	if o.Pin != nil {
		d.Pinned = *o.Pin
		d.HasPinned = true
	}
	return parser.Compile(d)
}
