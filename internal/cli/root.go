// Package cli implements the ai command line using Cobra.
// Cobra owns the process: config, logging and the journal are set up here,
// and the raw arguments are handed to the named-value parser untouched.
package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Azure/azure-ai-cli-sub003/internal/config"
	"github.com/Azure/azure-ai-cli-sub003/internal/infra/sqlite"
	"github.com/Azure/azure-ai-cli-sub003/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "ai",
	Short: "ai - Azure AI command line",
	Long: `ai parses named-value command lines for the Azure AI services.

Options may be given on the command line, in @files, in ini.file directive
files and in the <name>.defaults file of each command.`,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE:               runRoot,
}

// globalSwitches are the bare words accepted before the command name.
var globalSwitches = []string{"debug", "cls", "pause", "quiet", "verbose"}

var (
	version  = "dev"
	exitCode = ExitOK
)

// Execute runs the root command and exits with the command's exit code.
// Called from main.go.
func Execute(v string) {
	version = v

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitRunFailed)
	}
	os.Exit(exitCode)
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logOpts := logging.FromConfig(cfg.Logging)
	logOpts.Debug = debugRequested(args, cfg.Program.Name)
	log, closeLog, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer closeLog()

	var journal *sqlite.DB
	if cfg.History.Enabled {
		journal, err = sqlite.Open(cfg.History.DB)
		if err != nil {
			log.Warn("history disabled", "db", cfg.History.DB, "error", err)
		} else {
			defer journal.Close()
		}
	}

	app := NewApp(AppOptions{
		Config:  cfg,
		Version: version,
		Logger:  log,
		Journal: journal,
		Stdin:   cmd.InOrStdin(),
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
	exitCode = app.Run(args)
	return nil
}

// debugRequested reports whether the command line asks for debug output,
// either as a leading "debug" switch or as --debug anywhere.
func debugRequested(args []string, program string) bool {
	leading := true
	for _, arg := range args {
		if leading {
			switch {
			case arg == "debug":
				return true
			case arg == program || slices.Contains(globalSwitches, arg):
				continue
			}
			leading = false
		}
		if arg == "--debug" || arg == "--x.debug" {
			return true
		}
	}
	return false
}
