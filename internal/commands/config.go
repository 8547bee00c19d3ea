package commands

import (
	"slices"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/dispatch"
	"github.com/Azure/azure-ai-cli-sub003/internal/files"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/parser"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// ConfigScopeTokens are the command scopes a config file can be written for.
var ConfigScopeTokens = []string{"init", "chat", "eval", "speech", "vision", "language",
	"search", "service", "tool", "wizard", "run", "*"}

// ConfigHives are the hive names accepted right after "config".
var ConfigHives = []string{".", "local", "user", "global", "system"}

// Keys written by the config command.
const (
	KeyConfigAtFile = "x.config.command.at.file"
	KeyConfigSet    = "x.config.command.set"
	KeyConfigAdd    = "x.config.command.add"
	KeyConfigFind   = "x.config.command.find"
	KeyConfigClear  = "x.config.command.clear"
)

// ConfigTable is the value table of the config command.
func ConfigTable() *parser.List {
	return parser.NewList(
		parser.Pinned("--?", namedvalues.KeyHelp, "01", "true"),
		parser.TrueFalse("", KeyPause, "01"),
		parser.TrueFalse("", namedvalues.KeyQuiet, "01"),
		parser.TrueFalse("", namedvalues.KeyVerbose, "01"),

		parser.Any1Value("", KeyInputPath, "001"),
		parser.Any1Value("", KeyOutputPath, "011"),
		parser.Any1Value("", KeyRunTime, "111"),

		parser.Any1Value("--hive", files.KeyScopeHive, "0001"),
		parser.Any1Value("--region", files.KeyScopeRegion, "0001"),
		parser.RequiredValidValue("--scope", files.KeyScopeCommand, "0001", strings.Join(ConfigScopeTokens, ";")),

		parser.Any1or2Value("-s", KeyConfigSet, "0001"),
		parser.Any1or2Value("-a", KeyConfigAdd, "0001"),
		parser.OptionalWithDefault("-f", KeyConfigFind, "0001", "*"),
		parser.OptionalWithDefault("-c", KeyConfigClear, "0001", "*"),
	)
}

// ConfigRoute parses "config [HIVE] [SCOPE] [@FILE] [--set|--add|--find|--clear ...]".
func ConfigRoute() dispatch.Route {
	table := ConfigTable()
	return dispatch.Route{
		Root:     "config",
		Commands: []dispatch.Command{{Name: "config"}},
		Table:    func(string) parser.Parser { return table },
		Parse: func(d *dispatch.Dispatcher, src tokens.Source, values *namedvalues.Values) bool {
			return parseConfig(d, src, values, table)
		},
	}
}

func parseConfig(d *dispatch.Dispatcher, src tokens.Source, values *namedvalues.Values, table parser.Parser) bool {
	token, ok := src.PopNextToken()
	if !ok || token != "config" {
		return false
	}
	_ = values.Add(namedvalues.KeyCommand, token)
	values.Freeze(namedvalues.KeyCommand)

	parsed := false
	token, ok = src.PeekNextToken(0)
	if ok && slices.Contains(ConfigHives, token) {
		_ = values.Add(files.KeyScopeHive, token)
		src.SkipTokens(1)
		token, ok = src.PeekNextToken(0)
		parsed = true
	}

	if ok && !strings.HasPrefix(token, "@") && !strings.HasPrefix(token, "-") {
		if !slices.Contains(ConfigScopeTokens, token) {
			d.InvalidArguments(src, values, "command line argument(s)")
			return false
		}
		_ = values.Add(files.KeyScopeCommand, token)
		src.SkipTokens(1)
		token, ok = src.PeekNextToken(0)
		parsed = true
	}

	if ok && strings.HasPrefix(token, "@") {
		_ = values.Add(KeyConfigAtFile, token)
		src.SkipTokens(1)
		_, ok = src.PeekNextToken(0)
		parsed = true
	}

	if !parsed && !ok {
		values.RequestHelp()
		return false
	}

	if !d.ParseAllValues(src, values, table) {
		return false
	}
	if !values.Contains(namedvalues.KeyVerbose) {
		_ = values.Add(namedvalues.KeyVerbose, "false")
	}
	return true
}
