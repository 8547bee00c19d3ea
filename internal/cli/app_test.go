package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Azure/azure-ai-cli-sub003/internal/config"
	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/files"
	"github.com/Azure/azure-ai-cli-sub003/internal/infra/sqlite"
)

type testApp struct {
	*App
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	dir     string
	journal *sqlite.DB
}

func newTestApp(t *testing.T, tweak func(*config.Config, *AppOptions)) *testApp {
	t.Helper()
	dir := t.TempDir()
	hive := filepath.Join(dir, "hive")
	if err := os.MkdirAll(hive, 0755); err != nil {
		t.Fatalf("mkdir hive: %v", err)
	}

	db, err := sqlite.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.DefaultConfig()
	cfg.History.DB = filepath.Join(dir, "history.db")

	ta := &testApp{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, dir: hive, journal: db}
	opts := AppOptions{
		Config:  cfg,
		Version: "1.2.3",
		Files: files.NewResolver("ai",
			files.WithConfigDirs(hive),
			files.WithHive("user", hive)),
		Journal: db,
		Stdin:   strings.NewReader(""),
		Stdout:  ta.out,
		Stderr:  ta.errOut,
	}
	if tweak != nil {
		tweak(&opts.Config, &opts)
	}
	ta.App = NewApp(opts)
	return ta
}

func (ta *testApp) run(t *testing.T, want int, args ...string) {
	t.Helper()
	ta.out.Reset()
	ta.errOut.Reset()
	if got := ta.Run(args); got != want {
		t.Fatalf("Run(%v) = %d, want %d\nstdout: %s\nstderr: %s", args, got, want, ta.out, ta.errOut)
	}
}

func assertContains(t *testing.T, what, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("%s does not contain %q:\n%s", what, want, got)
	}
}

// ─── Run ────────────────────────────────────────────────────────────────────

func TestRun_Version(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "version")
	assertContains(t, "stdout", ta.out.String(), "AI - Azure AI CLI, Version 1.2.3")
}

func TestRun_QuietSkipsBanner(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "quiet", "version")
	if got := ta.out.String(); got != "1.2.3\n" {
		t.Errorf("stdout = %q, want %q", got, "1.2.3\n")
	}
}

func TestRun_UnknownCommandSuggests(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitParseFailed, "srch")
	stderr := ta.errOut.String()
	assertContains(t, "stderr", stderr, "Unknown command: srch")
	assertContains(t, "stderr", stderr, "Did you mean?")
	assertContains(t, "stderr", stderr, "ai search")
	assertContains(t, "stderr", stderr, "SEE: ai help")
}

func TestRun_ValueError(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitParseFailed, "chat", "--user.prompt")
	assertContains(t, "stderr", ta.errOut.String(), "ERROR: Parsing command line!!")
}

func TestRun_Help(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "help")
	stdout := ta.out.String()
	assertContains(t, "stdout", stdout, "USAGE: ai <command>")
	assertContains(t, "stdout", stdout, "ai chat")
	assertContains(t, "stdout", stdout, "ai search index create")
}

func TestRun_HelpListsCommandOptions(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "help", "history")
	stdout := ta.out.String()
	assertContains(t, "stdout", stdout, "OPTIONS:")
	assertContains(t, "stdout", stdout, "--last")
	assertContains(t, "stdout", stdout, "--id, --invocation.id")
}

func TestRun_HelpFind(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "help", "find", "index")
	assertContains(t, "stdout", ta.out.String(), "ai search index create")
}

func TestRun_HelpFile(t *testing.T) {
	ta := newTestApp(t, nil)
	helpDir := filepath.Join(ta.dir, "help")
	if err := os.MkdirAll(helpDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(helpDir, "chat"), []byte("CHAT HELP TEXT\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ta.run(t, ExitOK, "help", "chat")
	assertContains(t, "stdout", ta.out.String(), "CHAT HELP TEXT")
}

func TestRun_PartialCommandShowsHelp(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "search", "index")
	assertContains(t, "stdout", ta.out.String(), "ai search index create")
}

func TestRun_VerboseShowsMaskedValues(t *testing.T) {
	ta := newTestApp(t, nil)
	key := "0123456789abcdef0123456789abcdef"
	ta.run(t, ExitOK, "verbose", "chat", "--user.prompt", "hi", "--key", key)
	stdout := ta.out.String()
	assertContains(t, "stdout", stdout, "chat.message.user.prompt=hi")
	assertContains(t, "stdout", stdout, "service.config.key=0123****")
	if strings.Contains(stdout, key) {
		t.Errorf("stdout shows the unmasked key:\n%s", stdout)
	}
}

func TestRun_NotVerboseHidesValues(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "chat", "--user.prompt", "hi")
	if strings.Contains(ta.out.String(), "chat.message.user.prompt") {
		t.Errorf("values shown without verbose:\n%s", ta.out)
	}
}

func TestRun_Save(t *testing.T) {
	ta := newTestApp(t, nil)
	path := filepath.Join(t.TempDir(), "chat.ai")
	ta.run(t, ExitOK, "chat", "--user.prompt", "hi", "--save", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	saved := string(data)
	assertContains(t, "saved file", saved, "x.command=chat\n")
	assertContains(t, "saved file", saved, "chat.message.user.prompt=hi\n")
	if strings.Contains(saved, "save.as.file") {
		t.Errorf("saved file records its own name:\n%s", saved)
	}
}

func TestRun_SaveToDirectory(t *testing.T) {
	ta := newTestApp(t, nil)
	dir := t.TempDir()
	ta.run(t, ExitOK, "quiet", "chat", "--user.prompt", "hi", "--save", dir)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.ai"))
	if len(matches) != 1 {
		t.Fatalf("files saved = %v, want one <id>.ai", matches)
	}
}

func TestRun_ForEachRunsOncePerRow(t *testing.T) {
	ta := newTestApp(t, nil)
	dir := t.TempDir()
	ta.run(t, ExitOK, "quiet", "chat", "--foreach", "tsv", "columns", "user.prompt", "in", "one;two", "--save", dir)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.ai"))
	if len(matches) != 2 {
		t.Fatalf("files saved = %v, want one per row", matches)
	}
	var prompts []string
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			t.Fatal(err)
		}
		saved := string(data)
		if strings.Contains(saved, "foreach.") {
			t.Errorf("row file keeps the foreach set:\n%s", saved)
		}
		for _, line := range strings.Split(saved, "\n") {
			if p, ok := strings.CutPrefix(line, "chat.message.user.prompt="); ok {
				prompts = append(prompts, p)
			}
		}
	}
	slices.Sort(prompts)
	if !slices.Equal(prompts, []string{"one", "two"}) {
		t.Errorf("prompts = %v, want [one two]", prompts)
	}
}

func TestRun_RepeatCappedByMax(t *testing.T) {
	ta := newTestApp(t, nil)
	dir := t.TempDir()
	ta.run(t, ExitOK, "quiet", "chat", "--user.prompt", "hi", "--repeat", "3", "--max", "2", "--save", dir)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.ai"))
	if len(matches) != 2 {
		t.Errorf("files saved = %v, want 2", matches)
	}
}

func TestRun_Pause(t *testing.T) {
	ta := newTestApp(t, func(_ *config.Config, o *AppOptions) {
		o.Stdin = strings.NewReader("\n")
	})
	ta.run(t, ExitOK, "pause", "version")
	assertContains(t, "stdout", ta.out.String(), "Press ENTER to exit...")
}

func TestRun_MetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai.prom")
	ta := newTestApp(t, func(c *config.Config, _ *AppOptions) {
		c.Metrics.Textfile = path
	})
	ta.run(t, ExitOK, "version")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	assertContains(t, "textfile", string(data), "ai_parses_total")
}

// ─── Config ─────────────────────────────────────────────────────────────────

func TestRun_ConfigSetShowAddClear(t *testing.T) {
	ta := newTestApp(t, nil)
	path := filepath.Join(ta.dir, "region")

	ta.run(t, ExitOK, "config", "user", "--set", "region", "westus")
	assertContains(t, "stdout", ta.out.String(), "region (saved at")
	if data, _ := os.ReadFile(path); string(data) != "westus" {
		t.Fatalf("region file = %q, want %q", data, "westus")
	}

	ta.run(t, ExitOK, "config", "@region")
	assertContains(t, "stdout", ta.out.String(), "found at")
	assertContains(t, "stdout", ta.out.String(), "  westus")

	ta.run(t, ExitOK, "config", "@region", "--add", "eastus")
	if data, _ := os.ReadFile(path); string(data) != "westus\neastus" {
		t.Fatalf("region file = %q, want two lines", data)
	}

	ta.run(t, ExitOK, "config", "--find", "reg")
	assertContains(t, "stdout", ta.out.String(), "region (found at")

	ta.run(t, ExitOK, "config", "--clear", "region")
	assertContains(t, "stdout", ta.out.String(), "deleted from")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("region file still exists: %v", err)
	}
}

func TestRun_ConfigScopedSet(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "config", "user", "chat", "--set", "deployment", "gpt")
	if data, err := os.ReadFile(filepath.Join(ta.dir, "chat.deployment")); err != nil || string(data) != "gpt" {
		t.Fatalf("chat.deployment = %q, %v", data, err)
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"set without value", []string{"config", "--set", "region"}, "missing @NAME, NAME, or VALUE"},
		{"clear missing", []string{"config", "--clear", "nothing.here"}, "cannot delete '@nothing.here'"},
		{"find missing", []string{"config", "--find", "nothing.here"}, "'nothing.here' not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, nil)
			ta.run(t, ExitRunFailed, tt.args...)
			assertContains(t, "stderr", ta.errOut.String(), tt.want)
		})
	}
}

// ─── History ────────────────────────────────────────────────────────────────

func TestRun_HistoryRecordsInvocations(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(t, ExitOK, "version")
	ta.run(t, ExitParseFailed, "bogus")
	ta.run(t, ExitOK, "chat", "--user.prompt", "hi", "--key", "0123456789abcdef0123456789abcdef")

	ta.run(t, ExitOK, "quiet", "history", "--json")
	var list []domain.Invocation
	if err := json.Unmarshal(ta.out.Bytes(), &list); err != nil {
		t.Fatalf("history --json: %v\n%s", err, ta.out)
	}
	if len(list) != 3 {
		t.Fatalf("history has %d invocations, want 3", len(list))
	}
	if list[0].Command != "chat" || list[2].Command != "version" {
		t.Errorf("order = %q, %q, %q", list[0].Command, list[1].Command, list[2].Command)
	}
	if list[1].ExitCode != ExitParseFailed || list[1].Error == "" {
		t.Errorf("failed parse recorded as exit %d, error %q", list[1].ExitCode, list[1].Error)
	}
	for _, line := range list[0].Values {
		if strings.Contains(line, "0123456789abcdef0123456789abcdef") {
			t.Errorf("journal holds an unmasked key: %s", line)
		}
	}

	ta.run(t, ExitOK, "history", "--id", list[0].ID)
	assertContains(t, "stdout", ta.out.String(), "Command:  chat")

	ta.run(t, ExitOK, "history")
	assertContains(t, "stdout", ta.out.String(), "COMMAND")

	ta.run(t, ExitOK, "history", "--clear")
	assertContains(t, "stdout", ta.out.String(), "Cleared 6 invocation(s).")
}

func TestRun_HistoryPrunes(t *testing.T) {
	ta := newTestApp(t, func(c *config.Config, _ *AppOptions) {
		c.History.Limit = 2
	})
	for i := 0; i < 4; i++ {
		ta.run(t, ExitOK, "version")
	}
	n, err := ta.journal.CountInvocations()
	if err != nil {
		t.Fatalf("CountInvocations: %v", err)
	}
	if n != 2 {
		t.Errorf("journal holds %d invocations, want 2", n)
	}
}

func TestRun_HistoryDisabled(t *testing.T) {
	ta := newTestApp(t, func(_ *config.Config, o *AppOptions) {
		o.Journal = nil
	})
	ta.run(t, ExitRunFailed, "history")
	assertContains(t, "stderr", ta.errOut.String(), "history is disabled")
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func TestDebugRequested(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"debug", "chat"}, true},
		{[]string{"quiet", "debug", "chat"}, true},
		{[]string{"ai", "debug", "chat"}, true},
		{[]string{"chat", "--debug"}, true},
		{[]string{"chat", "debug"}, false},
		{[]string{"chat"}, false},
	}
	for _, tt := range tests {
		if got := debugRequested(tt.args, "ai"); got != tt.want {
			t.Errorf("debugRequested(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestDisplayValue(t *testing.T) {
	long := strings.Repeat("x", 120)
	tests := []struct {
		name, key, value, want string
	}{
		{"plain", "a.b", "hi", "hi"},
		{"multi-line", "a.b", "one\ntwo\nthree", `"one..." (+2 line(s))`},
		{"long", "a.b", long, `"` + long[:100] + `..." (+20 char(s))`},
		{"password", "db.password", "hunter22", "hunt" + strings.Repeat("*", 28)},
		{"guid key", "service.config.key", "0123456789abcdef0123456789abcdef", "0123" + strings.Repeat("*", 28)},
		{"short key", "service.config.key", "abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayValue(tt.key, tt.value); got != tt.want {
				t.Errorf("displayValue(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestCommandWords(t *testing.T) {
	got := commandWords([]string{"quiet", "ai", "search", "indx", "--name", "x"}, "ai")
	if got != "search.indx" {
		t.Errorf("commandWords() = %q, want %q", got, "search.indx")
	}
}

func TestSuggest(t *testing.T) {
	got := suggest("srch", []string{"chat", "search", "speech"})
	if len(got) == 0 || got[0] != "search" {
		t.Errorf("suggest(srch) = %v, want search first", got)
	}
	if got := suggest("", []string{"chat"}); got != nil {
		t.Errorf("suggest(\"\") = %v, want nil", got)
	}
}
