package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// defaultTsvColumns names the columns of a foreach set with no header.
const defaultTsvColumns = "audio.input.id\taudio.input.file"

// Expand turns one parsed command into the stores it runs with: one per
// file of the expand-file list, then one per foreach row, then repeated
// x.command.repeat times, and finally capped at x.command.max. A command
// with none of these runs once with a copy of values.
func (d *Dispatcher) Expand(values *namedvalues.Values) ([]*namedvalues.Values, error) {
	runs := []*namedvalues.Values{values.Clone()}

	if name := values.Get(namedvalues.KeyExpandFile); name != "" {
		if files := values.Get(name + "s"); files != "" {
			block(runs, name+"s")
			expanded, err := d.expandFiles(runs, name, files)
			if err != nil {
				return nil, err
			}
			runs = expanded
		}
	}

	if count := values.Int(namedvalues.KeyForEachCount, 0); count > 0 {
		block(runs, namedvalues.KeyForEachCount)
		for i := range count {
			expanded, err := d.expandForEach(runs, values, i)
			if err != nil {
				return nil, err
			}
			runs = expanded
		}
	}

	if repeat := values.Int(namedvalues.KeyRepeat, 0); repeat > 0 {
		block(runs, namedvalues.KeyRepeat)
		repeated := make([]*namedvalues.Values, 0, repeat*len(runs))
		for range repeat {
			for _, run := range runs {
				repeated = append(repeated, run.Clone())
			}
		}
		runs = repeated
	}

	if limit := values.Int(namedvalues.KeyMax, -1); limit >= 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	if len(runs) != 1 {
		d.log.Debug("expanded", "command", values.Command(), "runs", len(runs))
	}
	return runs, nil
}

// block removes name from every run so the expansion is not applied twice.
func block(runs []*namedvalues.Values, names ...string) {
	for _, run := range runs {
		for _, name := range names {
			run.Reset(name)
		}
	}
}

func (d *Dispatcher) expandFiles(runs []*namedvalues.Values, name, patterns string) ([]*namedvalues.Values, error) {
	var out []*namedvalues.Values
	for _, run := range runs {
		found := d.opts.Files.FindFiles(run.ReplaceValues(patterns))
		if len(found) == 0 {
			d.log.Debug("no files found", "name", name, "patterns", patterns)
		}
		for _, path := range found {
			combined, err := d.combine(run, tokens.NewIniLine(name+"="+path))
			if err != nil {
				return nil, err
			}
			out = append(out, combined)
		}
	}
	return out, nil
}

// expandForEach multiplies runs by the rows of foreach set i. A set with no
// data rows leaves runs unchanged.
func (d *Dispatcher) expandForEach(runs []*namedvalues.Values, values *namedvalues.Values, i int) ([]*namedvalues.Values, error) {
	key := "foreach." + strconv.Itoa(i) + ".tsv.file"
	keys := []string{key, key + ".has.header", key + ".skip.header", key + ".columns"}

	var rows []string
	for _, line := range strings.FieldsFunc(values.Get(key), func(r rune) bool { return r == '\r' || r == '\n' }) {
		if strings.TrimSpace(line) != "" {
			rows = append(rows, line)
		}
	}

	columns := defaultTsvColumns
	if values.Bool(key+".has.header", true) && len(rows) > 0 {
		columns, rows = rows[0], rows[1:]
	}
	columns = values.GetOrDefault(key+".columns", columns)
	if len(rows) == 0 {
		block(runs, keys...)
		return runs, nil
	}

	out := make([]*namedvalues.Values, 0, len(rows)*len(runs))
	for _, row := range rows {
		for _, run := range runs {
			combined, err := d.combine(run, tokens.NewTsvRow(columns, row))
			if err != nil {
				return nil, err
			}
			block([]*namedvalues.Values{combined}, keys...)
			out = append(out, d.resolveRow(combined))
		}
	}
	return out, nil
}

// combine parses src into a copy of base with the command's value table.
func (d *Dispatcher) combine(base *namedvalues.Values, src tokens.Source) (*namedvalues.Values, error) {
	run := base.Clone()
	if !d.ParseCommandValues(src, run) {
		if err := run.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("cannot apply %q to %s", src.PeekAllTokens(tokens.All), base.CommandForDisplay())
	}
	return run, nil
}

// resolveRow expands @file references and {name} placeholders in the
// values of one row's store, against that store.
func (d *Dispatcher) resolveRow(run *namedvalues.Values) *namedvalues.Values {
	for _, name := range run.Names() {
		value := run.Get(name)
		switch {
		case strings.HasPrefix(value, "@@"):
			run.Set(name, d.opts.Files.ExpandAtFileValue(value[1:], run))
		case strings.HasPrefix(value, "@"):
			run.Set(name, d.opts.Files.ExpandAtFileValue(value, run))
		case strings.Contains(value, "{"):
			run.Set(name, run.ReplaceValues(value))
		}
	}
	return run
}
