package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
)

// Descriptor is the declarative form of one option.
//
//	Short   optional alias matched as a single token, e.g. "--region"
//	Name    dotted full name, e.g. "service.config.region"
//	Parts   one bitmask per alternative, ';' separated: '1' required, '0' optional
//	Count   value arities to try in order, ';' separated, e.g. "2;1"
//	Valid   ';' list of accepted values, or a sentinel: "@" file reference,
//	        "@@" output file, ";" list, tab-delimited
//	Key     where the value is stored; defaults to Name
//	Pinned  implied value; with PinnedKey it is stored there as a second fact
type Descriptor struct {
	Short     string
	Name      string
	Parts     string
	Count     string
	Valid     string
	Key       string
	Pinned    string
	HasPinned bool
	PinnedKey string
}

// SegmentKind tags a compiled name segment.
type SegmentKind uint8

const (
	Literal SegmentKind = iota
	Wildcard
)

// Segment is one dotted part of a full name, compiled for one bitmask.
type Segment struct {
	Name     string
	Kind     SegmentKind
	Required bool
}

// Layout is a full name compiled against one RequiredParts alternative.
type Layout []Segment

// Pattern is a compiled Descriptor. It is immutable and safe to share.
type Pattern struct {
	desc    Descriptor
	layouts []Layout
	counts  []int
}

// Option adjusts a Descriptor built with New.
type Option func(*Descriptor)

// ValidValues restricts accepted values.
func ValidValues(valid string) Option {
	return func(d *Descriptor) { d.Valid = valid }
}

// ValueKey stores the value under key instead of the full name.
func ValueKey(key string) Option {
	return func(d *Descriptor) { d.Key = key }
}

// Pin sets the implied value stored when no value is given.
func Pin(value string) Option {
	return func(d *Descriptor) {
		d.Pinned = value
		d.HasPinned = true
	}
}

// PinTo stores value under key whenever the option matches.
func PinTo(value, key string) Option {
	return func(d *Descriptor) {
		d.Pinned = value
		d.HasPinned = true
		d.PinnedKey = key
	}
}

// New compiles a pattern from literal table data and panics if the data is
// malformed, like regexp.MustCompile.
func New(short, name, parts, count string, opts ...Option) *Pattern {
	d := Descriptor{Short: short, Name: name, Parts: parts, Count: count}
	for _, opt := range opts {
		opt(&d)
	}
	return MustCompile(d)
}

// MustCompile is Compile that panics on error.
func MustCompile(d Descriptor) *Pattern {
	p, err := Compile(d)
	if err != nil {
		panic(err)
	}
	return p
}

// Compile validates d and builds its segment layouts once, so matching never
// re-reads the bitmask strings.
func Compile(d Descriptor) (*Pattern, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: empty name", domain.ErrInvalidDescriptor)
	}
	if d.PinnedKey != "" && !d.HasPinned {
		return nil, fmt.Errorf("%w: %s: pinned key without pinned value", domain.ErrInvalidDescriptor, d.Name)
	}
	if d.Key == "" {
		d.Key = d.Name
	}

	p := &Pattern{desc: d}

	names := strings.Split(d.Name, ".")
	for _, mask := range strings.Split(d.Parts, ";") {
		if len(mask) != len(names) {
			return nil, fmt.Errorf("%w: %s: bitmask %q has %d parts, name has %d",
				domain.ErrInvalidDescriptor, d.Name, mask, len(mask), len(names))
		}
		layout := make(Layout, len(names))
		for i, name := range names {
			switch mask[i] {
			case '0', '1':
			default:
				return nil, fmt.Errorf("%w: %s: bitmask %q", domain.ErrInvalidDescriptor, d.Name, mask)
			}
			seg := Segment{Name: name, Required: mask[i] == '1'}
			if name == "*" {
				seg.Kind = Wildcard
			}
			layout[i] = seg
		}
		p.layouts = append(p.layouts, layout)
	}

	for _, c := range strings.Split(d.Count, ";") {
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 || n > 2 {
			return nil, fmt.Errorf("%w: %s: value count %q", domain.ErrInvalidDescriptor, d.Name, d.Count)
		}
		p.counts = append(p.counts, n)
	}
	return p, nil
}

// Descriptor returns the source data the pattern was compiled from.
func (p *Pattern) Descriptor() Descriptor {
	return p.desc
}

// Usage renders the shortest spellings of the option for help output.
func (p *Pattern) Usage(prefix string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(p.desc.Short)
	for _, layout := range p.layouts {
		var parts []string
		for _, seg := range layout {
			if seg.Required {
				parts = append(parts, seg.Name)
			}
		}
		if len(parts) == 0 {
			continue
		}
		name := strings.Join(parts, ".")
		if !strings.HasPrefix(name, "-") {
			name = prefix + name
		}
		add(name)
	}
	return out
}
