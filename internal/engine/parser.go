package engine

import (
	"strings"

	"github.com/kotobamud/engine/pkg/world"
)

// Verb is a canonical command verb after alias resolution.
type Verb string

const (
	VerbLook      Verb = "look"
	VerbExamine   Verb = "examine"
	VerbGo        Verb = "go"
	VerbTake      Verb = "take"
	VerbDrop      Verb = "drop"
	VerbInventory Verb = "inventory"
	VerbTalk      Verb = "talk"
	VerbThemes    Verb = "themes"
	VerbTheme     Verb = "theme"
	VerbLearn     Verb = "learn"
	VerbHelp      Verb = "help"
	VerbSave      Verb = "save"
	VerbQuit      Verb = "quit"
	VerbUnknown   Verb = ""
)

// Command is one parsed player input line.
type Command struct {
	Verb Verb
	Args []string
	Raw  string
}

// Arg joins the remaining tokens back into a single query string.
func (c Command) Arg() string {
	return strings.Join(c.Args, " ")
}

var verbAliases = map[string]Verb{
	"look": VerbLook, "l": VerbLook, "見る": VerbLook, "みる": VerbLook,
	"examine": VerbExamine, "x": VerbExamine, "inspect": VerbExamine,
	"調べる": VerbExamine, "しらべる": VerbExamine,
	"go": VerbGo, "move": VerbGo, "walk": VerbGo, "行く": VerbGo, "いく": VerbGo,
	"take": VerbTake, "get": VerbTake, "pick": VerbTake, "取る": VerbTake, "とる": VerbTake,
	"drop": VerbDrop, "置く": VerbDrop, "おく": VerbDrop,
	"inventory": VerbInventory, "i": VerbInventory, "inv": VerbInventory, "持ち物": VerbInventory,
	"talk": VerbTalk, "speak": VerbTalk, "話す": VerbTalk, "はなす": VerbTalk,
	"themes": VerbThemes,
	"theme":  VerbTheme,
	"learn":  VerbLearn, "study": VerbLearn, "覚える": VerbLearn,
	"help": VerbHelp, "?": VerbHelp,
	"save": VerbSave,
	"quit": VerbQuit, "exit": VerbQuit, "q": VerbQuit,
}

// Parse splits an input line into a verb and its arguments. A bare
// direction token is shorthand for "go <direction>". Unrecognized verbs
// yield VerbUnknown with the original text preserved in Raw.
func Parse(input string) Command {
	raw := strings.TrimSpace(input)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{Verb: VerbUnknown, Raw: raw}
	}

	head := strings.ToLower(fields[0])
	if v, ok := verbAliases[head]; ok {
		args := fields[1:]
		switch v {
		case VerbTake:
			// "pick up lantern" and "take up lantern" mean the same.
			if len(args) > 0 && strings.EqualFold(args[0], "up") {
				args = args[1:]
			}
		case VerbTalk:
			// "talk to tanaka" and "talk with tanaka".
			if len(args) > 0 && (strings.EqualFold(args[0], "to") || strings.EqualFold(args[0], "with")) {
				args = args[1:]
			}
		case VerbLook:
			// "look at lantern" is an examine.
			if len(args) > 0 && strings.EqualFold(args[0], "at") {
				return Command{Verb: VerbExamine, Args: fields[2:], Raw: raw}
			}
		}
		return Command{Verb: v, Args: args, Raw: raw}
	}

	if _, ok := world.ParseDirection(fields[0]); ok {
		return Command{Verb: VerbGo, Args: fields[:1], Raw: raw}
	}

	return Command{Verb: VerbUnknown, Args: fields, Raw: raw}
}
