package commands

import (
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/parser"
)

// Keys written by the shared groups.
const (
	KeyInputPath   = "x.input.path"
	KeyOutputPath  = "x.output.path"
	KeyRunTime     = "x.run.time"
	KeyPause       = "x.pause"
	KeyThreads     = "x.command.parallel.thread.count"
	KeyProcesses   = "x.command.parallel.process.count"
	KeyServiceKey  = "service.config.key"
	KeyRegion      = "service.config.region"
	KeyDiagnostics = "diagnostics.config.log.file"
	KeyProgramLang = "x.command.programming.language"
)

// HelpSwitch answers "--?" and "--help" anywhere in a command line.
func HelpSwitch() parser.Parser {
	return parser.Pinned("--?", namedvalues.KeyHelp, "01", "true")
}

// Switches are the process-wide true/false switches.
func Switches() *parser.List {
	return parser.NewList(
		parser.TrueFalse("", namedvalues.KeyDebug, "01"),
		parser.TrueFalse("", KeyPause, "01"),
		parser.TrueFalse("", namedvalues.KeyQuiet, "01"),
		parser.TrueFalse("", namedvalues.KeyVerbose, "01"),
	)
}

// Common is the group every service command accepts: switches, paths,
// saving, repetition, parallelism, foreach expansion and the service
// key and region.
func Common(files parser.Files) *parser.List {
	return parser.NewList(
		HelpSwitch(),
		Switches(),
		parser.Any1Value("", KeyInputPath, "001"),
		parser.Any1Value("", KeyOutputPath, "011"),
		parser.Any1Value("", KeyRunTime, "111"),
		parser.OutputFileName("--save", namedvalues.KeySaveAs, "00011"),
		parser.Any1Value("", namedvalues.KeyMax, "001"),
		parser.Any1Value("", namedvalues.KeyRepeat, "001"),
		parser.OptionalWithDefault("--threads", KeyThreads, "00001", "0"),
		parser.OptionalWithDefault("--processes", KeyProcesses, "00001", "0"),
		parser.NewReplaceForEach(files),
		parser.NewForEach(files),
		parser.Any1Value("--key", KeyServiceKey, "001"),
		parser.Any1Value("--region", KeyRegion, "001"),
	)
}

// ExpectOutput checks a command's output against patterns, with the
// command's own prefix optional: "--output.expect" or "--chat.output.expect".
func ExpectOutput(prefix string) *parser.List {
	opt := parser.NotRequired(prefix)
	return parser.NewList(
		parser.Any1Value("--expect", prefix+".output.expect", opt+"11"),
		parser.Any1Value("--not.expect", prefix+".output.not.expect", opt+"111"),
		parser.TrueFalse("--auto.expect", prefix+".output.auto.expect", opt+"111"),
	)
}

// DiagnosticLog names the file SDK diagnostics are written to.
func DiagnosticLog() parser.Parser {
	return parser.OutputFileName("--log", KeyDiagnostics, "0010")
}

// ProgrammingLanguage picks the language of generated code.
func ProgrammingLanguage() parser.Parser {
	return parser.OptionalValidValue("--language", KeyProgramLang, "00011",
		"C#;Go;Java;JavaScript;Python;TypeScript", "C#")
}

// Ini reads directive lines from a file and names the expansion output.
func Ini() *parser.List {
	return parser.NewList(parser.IniFile(), parser.ExpandFileName())
}

// Args collects "--input name=value" pairs and positional arguments. ArgX
// takes any unprefixed token, so this group goes last.
func Args() *parser.List {
	return parser.NewList(parser.InputWildcard{}, parser.ArgX{})
}

// groups maps the names used in the catalog to group constructors. The
// command root is passed for groups that scope their keys by it.
func groups(files parser.Files) map[string]func(root string) parser.Parser {
	return map[string]func(string) parser.Parser{
		"help":        func(string) parser.Parser { return HelpSwitch() },
		"switches":    func(string) parser.Parser { return Switches() },
		"common":      func(string) parser.Parser { return Common(files) },
		"expect":      func(root string) parser.Parser { return ExpectOutput(root) },
		"diagnostics": func(string) parser.Parser { return DiagnosticLog() },
		"language":    func(string) parser.Parser { return ProgrammingLanguage() },
		"ini":         func(string) parser.Parser { return Ini() },
		"args":        func(string) parser.Parser { return Args() },
	}
}
