package dispatch

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/files"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/parser"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func searchTable() *parser.List {
	return parser.NewList(
		parser.Any1Value("", namedvalues.KeyCommand, "11"),
		parser.Pinned("--?", namedvalues.KeyHelp, "01", "true"),
		parser.Any1Value("", "search.index.name", "001"),
		parser.Any1Value("--region", "service.config.region", "001"),
		parser.IniFile(),
	)
}

// newTestDispatcher registers a "search" root against an empty hive.
func newTestDispatcher(t *testing.T, opts Options) (*Dispatcher, string) {
	t.Helper()
	hive := t.TempDir()
	if opts.Files == nil {
		opts.Files = files.NewResolver("ai", files.WithConfigDirs(hive))
	}
	d := New(opts)
	table := searchTable()
	err := d.Register(Route{
		Root: "search",
		Commands: []Command{
			{Name: "search.index.create", ValuesRequired: true},
			{Name: "search.index.list"},
		},
		Partials: []string{"search.index", "search"},
		Table:    func(string) parser.Parser { return table },
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	return d, hive
}

func assertValue(t *testing.T, values *namedvalues.Values, key, want string) {
	t.Helper()
	got, ok := values.Lookup(key)
	if !ok {
		t.Errorf("%s not set, want %q", key, want)
		return
	}
	if got != want {
		t.Errorf("%s = %q, want %q", key, got, want)
	}
}

// ─── Registration ───────────────────────────────────────────────────────────

func TestRegister_Rejects(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	for _, root := range []string{"", "a.b", "search"} {
		if err := d.Register(Route{Root: root}); !errors.Is(err, domain.ErrInvalidCatalog) {
			t.Errorf("Register(%q) error = %v, want ErrInvalidCatalog", root, err)
		}
	}
}

func TestCommands_Sorted(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	want := []string{"search.index.create", "search.index.list"}
	if got := d.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Commands() = %v, want %v", got, want)
	}
}

// ─── Command Names ──────────────────────────────────────────────────────────

func TestParse_DottedCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"separate tokens", []string{"search", "index", "create", "--name", "idx"}},
		{"single token", []string{"search.index.create", "--name", "idx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDispatcher(t, Options{})
			v := namedvalues.New()
			if !d.Parse(tt.args, v) {
				t.Fatalf("Parse() failed: %v", v.Err())
			}
			assertValue(t, v, namedvalues.KeyCommand, "search.index.create")
			assertValue(t, v, "search.index.name", "idx")
			if d.State() != StateDone {
				t.Errorf("State() = %v, want done", d.State())
			}
		})
	}
}

func TestParse_ValuesRequired(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	v := namedvalues.New()
	if d.Parse([]string{"search", "index", "create"}, v) {
		t.Fatal("Parse() succeeded without values")
	}
	if !v.HelpRequested() || v.HasError() {
		t.Errorf("help = %v, err = %v; want help and no error", v.HelpRequested(), v.Err())
	}
	if d.State() != StateHelp {
		t.Errorf("State() = %v, want help", d.State())
	}

	v = namedvalues.New()
	if !d.Parse([]string{"search", "index", "list"}, v) {
		t.Errorf("Parse(search index list) failed: %v", v.Err())
	}
}

func TestParse_PartialAsksForHelp(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	v := namedvalues.New()
	if d.Parse([]string{"search", "index"}, v) {
		t.Fatal("Parse() succeeded on a partial command")
	}
	if !v.HelpRequested() || v.HasError() {
		t.Errorf("help = %v, err = %v; want help and no error", v.HelpRequested(), v.Err())
	}
	assertValue(t, v, namedvalues.KeyVerbose, "false")
}

func TestParse_PartialWithUnknownWord(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	v := namedvalues.New()
	if d.Parse([]string{"search", "index", "bogus"}, v) {
		t.Fatal("Parse() succeeded")
	}
	if !errors.Is(v.Err(), domain.ErrUnknownCommand) {
		t.Fatalf("error = %v, want ErrUnknownCommand", v.Err())
	}
	var pe *domain.ParseError
	if !errors.As(v.Err(), &pe) {
		t.Fatalf("error is %T, want *ParseError", v.Err())
	}
	if pe.Message != "Unknown command: bogus" {
		t.Errorf("Message = %q", pe.Message)
	}
	if pe.Hint != "SEE: ai help search index" {
		t.Errorf("Hint = %q", pe.Hint)
	}
	if d.State() != StateError {
		t.Errorf("State() = %v, want error", d.State())
	}
}

func TestParse_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	v := namedvalues.New()
	if d.Parse([]string{"frobnicate"}, v) {
		t.Fatal("Parse() succeeded")
	}
	if !errors.Is(v.Err(), domain.ErrUnknownCommand) {
		t.Errorf("error = %v, want ErrUnknownCommand", v.Err())
	}
	if !v.HelpRequested() {
		t.Error("help not requested")
	}
}

func TestParse_HelpAliases(t *testing.T) {
	for _, alias := range []string{"-?", "-h", "--?", "--help"} {
		d, _ := newTestDispatcher(t, Options{})
		v := namedvalues.New()
		if d.Parse([]string{alias}, v) {
			t.Errorf("Parse(%s) succeeded", alias)
		}
		if !v.HelpRequested() || v.HasError() {
			t.Errorf("Parse(%s): help = %v, err = %v", alias, v.HelpRequested(), v.Err())
		}
	}
}

func TestParse_EmptyAsksForHelp(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	v := namedvalues.New()
	if d.Parse(nil, v) || !v.HelpRequested() {
		t.Error("empty command line should request help")
	}
}

func TestParse_CommandDirectiveConflict(t *testing.T) {
	d, hive := newTestDispatcher(t, Options{})
	writeFile(t, hive, "other", "x.command=search.index.list")

	v := namedvalues.New()
	if d.Parse([]string{"search", "index", "create", "@other"}, v) {
		t.Fatal("Parse() succeeded")
	}
	if !errors.Is(v.Err(), domain.ErrKeyConflict) {
		t.Errorf("error = %v, want ErrKeyConflict", v.Err())
	}
}

// ─── Defaults ───────────────────────────────────────────────────────────────

func TestParseDefaults(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		args       []string
		wantRegion bool
	}{
		{"applied", Options{}, []string{"search", "index", "create", "--name", "idx"}, true},
		{"suppressed by token", Options{}, []string{"search", "index", "create", "--nodefaults", "--name", "idx"}, false},
		{"suppressed by option", Options{NoDefaults: true}, []string{"search", "index", "create", "--name", "idx"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, hive := newTestDispatcher(t, tt.opts)
			writeFile(t, hive, "ai.defaults", "service.config.region=westus")

			v := namedvalues.New()
			if !d.Parse(tt.args, v) {
				t.Fatalf("Parse() failed: %v", v.Err())
			}
			if got := v.Contains("service.config.region"); got != tt.wantRegion {
				t.Errorf("region set = %v, want %v", got, tt.wantRegion)
			}
		})
	}
}

func TestParseDefaults_CommandLineWins(t *testing.T) {
	d, hive := newTestDispatcher(t, Options{})
	writeFile(t, hive, "ai.defaults", "service.config.region=westus")

	v := namedvalues.New()
	if !d.Parse([]string{"search", "index", "create", "--region", "eastus"}, v) {
		t.Fatalf("Parse() failed: %v", v.Err())
	}
	assertValue(t, v, "service.config.region", "eastus")
}

// ─── @file Includes ─────────────────────────────────────────────────────────

func TestParse_AtFileNested(t *testing.T) {
	var included []string
	d, hive := newTestDispatcher(t, Options{OnInclude: func(path string) { included = append(included, filepath.Base(path)) }})
	writeFile(t, hive, "outer", "@inner\nservice.config.region=eastus\n")
	writeFile(t, hive, "inner", "search.index.name=nested")

	v := namedvalues.New()
	if !d.Parse([]string{"search", "index", "create", "@outer"}, v) {
		t.Fatalf("Parse() failed: %v", v.Err())
	}
	assertValue(t, v, "search.index.name", "nested")
	assertValue(t, v, "service.config.region", "eastus")
	if want := []string{"outer", "inner"}; !reflect.DeepEqual(included, want) {
		t.Errorf("included = %v, want %v", included, want)
	}
}

func TestParse_IniFileOption(t *testing.T) {
	d, hive := newTestDispatcher(t, Options{})
	writeFile(t, hive, "settings", "search.index.name=from-ini\nservice.config.region=northeurope")

	v := namedvalues.New()
	if !d.Parse([]string{"search", "index", "create", "--ini", "@settings"}, v) {
		t.Fatalf("Parse() failed: %v", v.Err())
	}
	assertValue(t, v, "search.index.name", "from-ini")
	assertValue(t, v, "service.config.region", "northeurope")
	if v.Contains(namedvalues.KeyIniFile) {
		t.Error("ini.file left in values")
	}
}

func TestParse_IncludeCycle(t *testing.T) {
	d, hive := newTestDispatcher(t, Options{})
	writeFile(t, hive, "cycle-a", "@cycle-b")
	writeFile(t, hive, "cycle-b", "@cycle-a")

	v := namedvalues.New()
	if d.Parse([]string{"search", "index", "create", "@cycle-a"}, v) {
		t.Fatal("Parse() succeeded on a cycle")
	}
	if !errors.Is(v.Err(), domain.ErrIncludeCycle) {
		t.Errorf("error = %v, want ErrIncludeCycle", v.Err())
	}
	if d.State() != StateError {
		t.Errorf("State() = %v, want error", d.State())
	}
}

func TestParse_IncludeDepth(t *testing.T) {
	d, hive := newTestDispatcher(t, Options{MaxIncludeDepth: 2})
	writeFile(t, hive, "depth-1", "@depth-2")
	writeFile(t, hive, "depth-2", "@depth-3")
	writeFile(t, hive, "depth-3", "search.index.name=deep")

	v := namedvalues.New()
	if d.Parse([]string{"search", "index", "create", "@depth-1"}, v) {
		t.Fatal("Parse() succeeded past the depth limit")
	}
	if !errors.Is(v.Err(), domain.ErrIncludeDepth) {
		t.Errorf("error = %v, want ErrIncludeDepth", v.Err())
	}
}

func TestParse_SingleAtFileNamesCommand(t *testing.T) {
	d, hive := newTestDispatcher(t, Options{})
	writeFile(t, hive, "ai.defaults", "service.config.region=westus")
	writeFile(t, hive, "saved", "x.command=search.index.create\nsearch.index.name=saved")

	v := namedvalues.New()
	if !d.Parse([]string{"@saved"}, v) {
		t.Fatalf("Parse() failed: %v", v.Err())
	}
	assertValue(t, v, namedvalues.KeyCommand, "search.index.create")
	assertValue(t, v, "search.index.name", "saved")
	if v.Contains("service.config.region") {
		t.Error("defaults applied to a saved command line")
	}
}

// ─── Values ─────────────────────────────────────────────────────────────────

func TestParseAllValues_HelpCapture(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"leading help", []string{"search", "index", "create", "help", "topic"}, "topic"},
		{"help switch", []string{"search", "index", "create", "--?", "a", "b"}, "a b"},
		{"trailing help", []string{"search", "index", "create", "--region", "eastus", "help", "topic"}, "topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDispatcher(t, Options{})
			v := namedvalues.New()
			d.Parse(tt.args, v)
			if !v.HelpRequested() {
				t.Fatal("help not requested")
			}
			assertValue(t, v, namedvalues.KeyHelpMore, tt.want)
		})
	}
}

func TestParseAllValues_InvalidArguments(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	v := namedvalues.New()
	if d.Parse([]string{"search", "index", "create", "--name", "idx", "--bogus", "x"}, v) {
		t.Fatal("Parse() succeeded")
	}
	var pe *domain.ParseError
	if !errors.As(v.Err(), &pe) || !errors.Is(pe, domain.ErrInvalidArguments) {
		t.Fatalf("error = %v, want ErrInvalidArguments", v.Err())
	}
	if want := `Invalid command line argument(s) at "--bogus x".`; pe.Message != want {
		t.Errorf("Message = %q, want %q", pe.Message, want)
	}
	if want := "SEE: ai help search index create"; pe.Hint != want {
		t.Errorf("Hint = %q, want %q", pe.Hint, want)
	}
}

func TestParseAllValues_ValueShapeHint(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	v := namedvalues.New()
	if d.Parse([]string{"search", "index", "create", "--region"}, v) {
		t.Fatal("Parse() succeeded")
	}
	var pe *domain.ParseError
	if !errors.As(v.Err(), &pe) || !errors.Is(pe, domain.ErrValueShape) {
		t.Fatalf("error = %v, want ErrValueShape", v.Err())
	}
	if want := "SEE: ai help search index create"; pe.Hint != want {
		t.Errorf("Hint = %q, want %q", pe.Hint, want)
	}
}

func TestParseCommandValues(t *testing.T) {
	d, _ := newTestDispatcher(t, Options{})
	v := namedvalues.New()
	v.Add(namedvalues.KeyCommand, "search.index.create")

	src := tokens.NewCmdLine([]string{"--name", "idx"}, v)
	if !d.ParseCommandValues(src, v) {
		t.Fatalf("ParseCommandValues() failed: %v", v.Err())
	}
	assertValue(t, v, "search.index.name", "idx")
}

// ─── State ──────────────────────────────────────────────────────────────────

func TestState(t *testing.T) {
	tests := []struct {
		s    State
		name string
	}{
		{StateNoCommand, "no-command"},
		{StateCommandNamed, "command-named"},
		{StateDefaultsApplied, "defaults-applied"},
		{StateValuesParsed, "values-parsed"},
		{StateDone, "done"},
		{StateError, "error"},
		{StateHelp, "help"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}
