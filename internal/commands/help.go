package commands

import (
	"slices"
	"strings"

	"github.com/Azure/azure-ai-cli-sub003/internal/dispatch"
	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// HelpCommandTokens are the first words "help" accepts as a command name.
var HelpCommandTokens = []string{"init", "config", "chat", "complete", "wizard", "run",
	"search", "speech", "vision", "history", "version"}

// Help keys beyond the ones the dispatcher writes.
const (
	KeyHelpTokens      = "display.help.tokens"
	KeyHelpInteractive = "x.help.interactive"
	KeyHelpDump        = "display.help.dump"
)

// HelpRoute parses "help [COMMAND...] [--OPTION] [MORE...]" and
// "help list|topics|find|expand ...". "--help" as the first token is the
// same command.
func HelpRoute(root string) dispatch.Route {
	return dispatch.Route{
		Root:     root,
		Commands: []dispatch.Command{{Name: "help"}},
		Parse:    parseHelp,
	}
}

func parseHelp(_ *dispatch.Dispatcher, src tokens.Source, values *namedvalues.Values) bool {
	token, _ := src.PeekNextToken(0)
	if token != "help" && token != "--help" {
		return false
	}
	values.RequestHelp()
	_ = values.Add(namedvalues.KeyCommand, "help")
	src.SkipTokens(1)

	switch next, _ := src.PeekNextToken(0); next {
	case "topics", "list", "find", "expand":
		return parseHelpSearch(src, values)
	}
	return parseHelpTopic(src, values)
}

// parseHelpSearch handles the topic listing and text search forms.
func parseHelpSearch(src tokens.Source, values *namedvalues.Values) bool {
	switch token, _ := src.PeekNextToken(0); token {
	case "list", "topics":
		src.SkipTokens(1)
		_ = values.Add(namedvalues.KeyHelpTopic, helpSearchText(src, values, "*"))
	case "find":
		src.SkipTokens(1)
		_ = values.Add(namedvalues.KeyHelpText, helpSearchText(src, values, ""))
	default:
		_ = values.Add(namedvalues.KeyHelpText, helpSearchText(src, values, ""))
	}
	src.SkipTokens(tokens.All)
	return true
}

// helpSearchText strips the display modifiers from the remaining tokens,
// recording each as it goes, and returns what is left.
func helpSearchText(src tokens.Source, values *namedvalues.Values, def string) string {
	text := src.PeekAllTokens(tokens.All)
	var findTopics, findText bool

	leading := []struct {
		word string
		set  func()
	}{
		{"expand", func() { _ = values.Add(namedvalues.KeyHelpExpand, "true") }},
		{"dump", func() { _ = values.Add(KeyHelpDump, "true") }},
		{"--topics", func() { findTopics = true }},
		{"--topic", func() { findTopics = true }},
		{"topics", func() { findTopics = true }},
		{"topic", func() { findTopics = true }},
		{"--text", func() { findText = true }},
		{"text", func() { findText = true }},
	}

	for {
		before := text
		for _, l := range leading {
			if rest, ok := trimLeadingWord(text, l.word); ok {
				l.set()
				text = rest
			}
		}
		text = trimHelpSwitches(text, values)
		if text == before {
			break
		}
	}

	if text == "" {
		text = def
	}
	if findTopics {
		_ = values.Add(namedvalues.KeyHelpTopic, text)
	}
	if findText {
		_ = values.Add(namedvalues.KeyHelpText, text)
	}
	return text
}

// helpSwitches are the trailing display switches, longest spelling first.
var helpSwitches = []struct {
	text  string
	key   string
	value string
}{
	{"--expand false", namedvalues.KeyHelpExpand, "false"},
	{"--expand true", namedvalues.KeyHelpExpand, "true"},
	{"--expand", namedvalues.KeyHelpExpand, "true"},
	{"--dump false", KeyHelpDump, "false"},
	{"--dump true", KeyHelpDump, "true"},
	{"--dump", KeyHelpDump, "true"},
	{"--interactive false", KeyHelpInteractive, "false"},
	{"--interactive true", KeyHelpInteractive, "true"},
	{"--interactive", KeyHelpInteractive, "true"},
}

// trimHelpSwitches removes display switches wherever they appear. A nil
// values only strips them.
func trimHelpSwitches(text string, values *namedvalues.Values) string {
	for _, s := range helpSwitches {
		for {
			i := wordIndex(text, s.text)
			if i < 0 {
				break
			}
			text = strings.TrimSpace(text[:i] + " " + text[i+len(s.text):])
			if values != nil {
				_ = values.Add(s.key, s.value)
			}
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// wordIndex finds phrase in text on word boundaries.
func wordIndex(text, phrase string) int {
	for from := 0; from <= len(text)-len(phrase); {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(phrase)
		if (i == 0 || text[i-1] == ' ') && (end == len(text) || text[end] == ' ') {
			return i
		}
		from = i + 1
	}
	return -1
}

// trimHelpTokens drops display modifiers from a topic part without
// recording them.
func trimHelpTokens(text string) string {
	text, _ = trimLeadingWord(text, "expand")
	return trimHelpSwitches(text, nil)
}

func trimLeadingWord(text, word string) (string, bool) {
	rest, ok := strings.CutPrefix(text, word)
	if !ok || (rest != "" && rest[0] != ' ') {
		return text, false
	}
	return strings.TrimSpace(rest), true
}

// parseHelpTopic splits the remaining tokens into a command, an option
// and free text.
func parseHelpTopic(src tokens.Source, values *namedvalues.Values) bool {
	_ = values.Add(KeyHelpTokens, src.PeekAllTokens(tokens.All))

	var command string
	if token, ok := src.PeekNextToken(0); ok && slices.Contains(HelpCommandTokens, token) {
		parts := []string{token}
		src.SkipTokens(1)
		for {
			next, ok := src.PeekNextToken(0)
			if !ok || strings.HasPrefix(next, "-") || strings.HasPrefix(next, "@") {
				break
			}
			parts = append(parts, next)
			src.SkipTokens(1)
		}
		command = trimHelpTokens(strings.Join(parts, "."))
	}

	var option string
	if token, ok := src.PeekNextToken(0); ok && strings.HasPrefix(token, "--") {
		option = trimHelpTokens(strings.TrimPrefix(token, "--"))
		src.SkipTokens(1)
	}

	more := trimHelpTokens(src.PeekAllTokens(tokens.All))
	src.SkipTokens(tokens.All)
	more = strings.ReplaceAll(more, " ", ".")

	if command == "" && option == "" && more == "" {
		more = "help"
	}
	_ = values.Add(namedvalues.KeyHelpCommand, command)
	_ = values.Add(namedvalues.KeyHelpOption, option)
	_ = values.Add(namedvalues.KeyHelpMore, more)
	return true
}
