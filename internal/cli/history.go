package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
)

// History keys set by the history command's table.
const (
	KeyHistoryLast  = "history.last"
	KeyHistoryID    = "history.invocation.id"
	KeyHistoryClear = "history.clear"
	KeyHistoryJSON  = "history.output.json"
)

const defaultHistoryLast = 20

var errHistoryDisabled = errors.New("history is disabled; set [history] enabled = true")

// runHistory lists, shows or clears the invocation journal.
func (a *App) runHistory(values *namedvalues.Values) error {
	if a.journal == nil {
		return errHistoryDisabled
	}

	if values.Bool(KeyHistoryClear, false) {
		n, err := a.journal.ClearInvocations()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Cleared %d invocation(s).\n", n)
		return nil
	}

	asJSON := values.Bool(KeyHistoryJSON, false)
	if id := values.Get(KeyHistoryID); id != "" {
		inv, err := a.journal.GetInvocation(id)
		if err != nil {
			return err
		}
		if asJSON {
			return a.writeJSON(inv)
		}
		a.showInvocation(inv)
		return nil
	}

	list, err := a.journal.ListInvocations(values.Int(KeyHistoryLast, defaultHistoryLast), "")
	if err != nil {
		return err
	}
	if asJSON {
		return a.writeJSON(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No invocations recorded.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tCOMMAND\tEXIT\tDURATION\tARGS")
	for _, inv := range list {
		command := inv.Command
		if command == "" {
			command = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID(inv.ID),
			inv.StartedAt.Format("2006-01-02 15:04:05"),
			command,
			inv.ExitCode,
			inv.Duration.Round(time.Microsecond),
			inv.CommandLine(),
		)
	}
	return w.Flush()
}

func (a *App) showInvocation(inv *domain.Invocation) {
	fmt.Fprintf(a.out, "ID:       %s\n", inv.ID)
	fmt.Fprintf(a.out, "Started:  %s\n", inv.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.out, "Command:  %s\n", inv.Command)
	fmt.Fprintf(a.out, "Args:     %s\n", inv.CommandLine())
	fmt.Fprintf(a.out, "Exit:     %d\n", inv.ExitCode)
	if inv.Error != "" {
		fmt.Fprintf(a.out, "Error:    %s\n", inv.Error)
	}
	if len(inv.Values) > 0 {
		fmt.Fprintln(a.out, "Values:")
		for _, line := range inv.Values {
			fmt.Fprintf(a.out, "  %s\n", line)
		}
	}
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
