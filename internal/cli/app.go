package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Azure/azure-ai-cli-sub003/internal/commands"
	"github.com/Azure/azure-ai-cli-sub003/internal/config"
	"github.com/Azure/azure-ai-cli-sub003/internal/dispatch"
	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/files"
	"github.com/Azure/azure-ai-cli-sub003/internal/infra/metrics"
	"github.com/Azure/azure-ai-cli-sub003/internal/infra/sqlite"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitRunFailed   = 1
	ExitParseFailed = 2
)

// KeyHelpExitCode overrides the exit code of a help display.
const KeyHelpExitCode = "display.help.exit.code"

// AppOptions wires an App. Zero values fall back to the process defaults.
type AppOptions struct {
	Config  config.Config
	Version string
	Logger  *slog.Logger
	Files   *files.Resolver
	// Journal records every invocation; nil disables history.
	Journal *sqlite.DB
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// App parses one command line and runs the built-in commands.
type App struct {
	cfg     config.Config
	version string
	log     *slog.Logger
	files   *files.Resolver
	journal *sqlite.DB

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewApp builds an App from opts.
func NewApp(opts AppOptions) *App {
	a := &App{
		cfg:     opts.Config,
		version: opts.Version,
		log:     opts.Logger,
		files:   opts.Files,
		journal: opts.Journal,
		in:      opts.Stdin,
		out:     opts.Stdout,
		errOut:  opts.Stderr,
	}
	if a.cfg.Program.Name == "" {
		a.cfg = config.DefaultConfig()
	}
	if a.version == "" {
		a.version = "dev"
	}
	if a.log == nil {
		a.log = slog.New(slog.DiscardHandler)
	}
	if a.files == nil {
		a.files = newResolver(a.cfg)
	}
	if a.in == nil {
		a.in = os.Stdin
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.errOut == nil {
		a.errOut = os.Stderr
	}
	return a
}

func newResolver(cfg config.Config) *files.Resolver {
	var opts []files.Option
	if len(cfg.Paths.Config) > 0 {
		opts = append(opts, files.WithConfigDirs(cfg.Paths.Config...))
	}
	if len(cfg.Paths.Data) > 0 {
		opts = append(opts, files.WithDataDirs(cfg.Paths.Data...))
	}
	return files.NewResolver(cfg.Program.Name, opts...)
}

func (a *App) newDispatcher(log *slog.Logger) *dispatch.Dispatcher {
	return dispatch.New(dispatch.Options{
		ProgramName:     a.cfg.Program.Name,
		Files:           a.files,
		Logger:          log,
		MaxIncludeDepth: a.cfg.Parse.MaxIncludeDepth,
		NoDefaults:      a.cfg.Parse.NoDefaults,
		OnInclude:       metrics.OnInclude,
	})
}

// Run parses args, runs the resolved command and returns the exit code.
func (a *App) Run(args []string) int {
	start := time.Now()
	id := uuid.NewString()
	log := a.log.With("invocation", id)

	values := namedvalues.New()
	d := a.newDispatcher(log)
	if err := commands.Register(d); err != nil {
		a.renderError(err)
		return ExitRunFailed
	}

	parsed := d.Parse(args, values)
	took := time.Since(start)
	log.Debug("parsed", "command", values.Command(), "state", d.State().String(), "values", values.Len(), "took", took)

	code, outcome, runErr := a.afterParse(d, args, parsed, values, id)

	metrics.ObserveParse(values.CommandRoot(), outcome, errorKind(values.Err()), values.Len(), took)
	a.record(id, args, values, code, runErr, start)
	a.writeMetrics(log)

	if values.Bool(commands.KeyPause, false) {
		fmt.Fprint(a.out, "Press ENTER to exit... ")
		_, _ = bufio.NewReader(a.in).ReadString('\n')
	}
	log.Debug("exit", "code", code)
	return code
}

// afterParse shows errors or help, or runs the command once per expanded
// run.
func (a *App) afterParse(d *dispatch.Dispatcher, args []string, parsed bool, values *namedvalues.Values, id string) (int, string, error) {
	switch {
	case values.HasError():
		a.banner(values)
		a.renderParseError(d, values, args)
		return ExitParseFailed, "error", nil
	case values.HelpRequested():
		a.banner(values)
		a.renderHelp(d, values)
		return values.Int(KeyHelpExitCode, ExitOK), "help", nil
	case !parsed:
		a.renderError(errors.New("command line not parsed"))
		return ExitParseFailed, "error", nil
	}

	a.banner(values)
	runs, err := d.Expand(values)
	if err != nil {
		a.renderError(err)
		return ExitRunFailed, "done", err
	}
	for i, run := range runs {
		runID := id
		if len(runs) > 1 {
			runID = fmt.Sprintf("%s.%d", id, i+1)
		}
		a.displayValues(run)
		if err := a.runCommand(run, runID); err != nil {
			a.renderError(err)
			return ExitRunFailed, "done", err
		}
	}
	return ExitOK, "done", nil
}

// runCommand is the run phase of the commands this binary implements
// itself. Every other command ends once its values are parsed and shown.
func (a *App) runCommand(values *namedvalues.Values, id string) error {
	var err error
	switch values.CommandRoot() {
	case "version":
		fmt.Fprintln(a.out, a.version)
	case "config":
		err = a.runConfig(values)
	case "history":
		err = a.runHistory(values)
	}
	if err != nil {
		return err
	}
	return a.saveValues(values, id)
}

// saveValues writes the parsed values to the --save file. A directory
// gets a file named after the invocation.
func (a *App) saveValues(values *namedvalues.Values, id string) error {
	path := values.Get(namedvalues.KeySaveAs)
	if path == "" {
		return nil
	}
	path = values.ReplaceValues(path)
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, id+"."+a.cfg.Program.Name)
	}

	names := slices.DeleteFunc(values.Names(), func(name string) bool {
		return name == namedvalues.KeySaveAs || name == namedvalues.KeyHelp
	})
	written, err := values.SaveAs(path, names...)
	if err != nil {
		return err
	}
	if !values.Bool(namedvalues.KeyQuiet, false) {
		for _, f := range written {
			fmt.Fprintf(a.out, "Saved: %s\n", f)
		}
	}
	return nil
}

// record appends the invocation to the journal and prunes old entries.
func (a *App) record(id string, args []string, values *namedvalues.Values, code int, runErr error, start time.Time) {
	if a.journal == nil {
		return
	}
	inv := domain.Invocation{
		ID:        id,
		Command:   values.Command(),
		Args:      args,
		Values:    maskedLines(values),
		ExitCode:  code,
		StartedAt: start,
		Duration:  time.Since(start),
	}
	switch {
	case values.HasError():
		inv.Error = values.Err().Error()
	case runErr != nil:
		inv.Error = runErr.Error()
	}

	if _, err := a.journal.RecordInvocation(inv); err != nil {
		metrics.JournalWrites.WithLabelValues("error").Inc()
		a.log.Warn("journal write failed", "error", err)
		return
	}
	metrics.JournalWrites.WithLabelValues("ok").Inc()

	if a.cfg.History.Limit > 0 {
		if _, err := a.journal.PruneInvocations(a.cfg.History.Limit); err != nil {
			a.log.Warn("journal prune failed", "error", err)
		}
	}
}

func (a *App) writeMetrics(log *slog.Logger) {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		log.Warn("metrics textfile write failed", "path", path, "error", err)
	}
}

// errorKind names the sentinel behind a parse error for metrics.
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	kinds := []struct {
		err  error
		name string
	}{
		{domain.ErrUnknownCommand, "unknown_command"},
		{domain.ErrInvalidArguments, "invalid_arguments"},
		{domain.ErrValueShape, "value_shape"},
		{domain.ErrKeyConflict, "key_conflict"},
		{domain.ErrIncludeCycle, "include_cycle"},
		{domain.ErrIncludeDepth, "include_depth"},
		{domain.ErrFileNotFound, "file_not_found"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}
