// Package engine turns parsed player commands into world mutations and
// player-facing text. It is transport-agnostic: the WebSocket server and
// the console front-end both drive the same Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kotobamud/engine/internal/services"
	"github.com/kotobamud/engine/internal/storage"
	"github.com/kotobamud/engine/pkg/cache"
	"github.com/kotobamud/engine/pkg/dialogue"
	"github.com/kotobamud/engine/pkg/state"
	"github.com/kotobamud/engine/pkg/vocab"
	"github.com/kotobamud/engine/pkg/world"
)

const helpText = `Commands:
  look (l)               describe your surroundings
  go <direction>         move north, south, east or west (or just "north")
  examine <thing> (x)    take a closer look at an item
  take <thing>           pick up an item
  drop <thing>           drop an item from your inventory
  inventory (i)          list what you are carrying
  talk <person> [words]  talk to someone, in Japanese if you can
  themes                 list vocabulary themes
  theme <name>           show the words in a theme
  learn <word>           study a vocabulary word
  save                   save your progress
  quit                   leave the game
Japanese verbs work too: 見る, 行く, 取る, 話す, and directions 北 南 東 西.`

const unknownText = "I don't understand. Type 'help' for a list of commands."

// learnDelta is the proficiency gain per study of a word.
const learnDelta = 0.1

// Engine processes commands against the shared world on behalf of one
// player at a time. The grid and conversation manager are shared across
// sessions; the player record passed to ProcessCommand is owned by the
// calling session.
type Engine struct {
	grid     *world.Grid
	convos   *dialogue.Manager
	worldgen *services.WorldGen
	words    *vocab.Store
	store    storage.Storage
	logger   *slog.Logger
}

// NewEngine wires an engine. worldgen and words may be nil; the examine
// and vocabulary commands then degrade to their offline behavior.
func NewEngine(grid *world.Grid, convos *dialogue.Manager, worldgen *services.WorldGen, words *vocab.Store, store storage.Storage, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		grid:     grid,
		convos:   convos,
		worldgen: worldgen,
		words:    words,
		store:    store,
		logger:   logger,
	}
}

// ProcessCommand parses and executes one input line, then persists the
// player. Persistence failure never aborts the session; the player is
// warned and play continues in memory.
func (e *Engine) ProcessCommand(ctx context.Context, p *state.Player, input string) *Response {
	cmd := Parse(input)

	var resp *Response
	switch cmd.Verb {
	case VerbLook:
		resp = e.handleLook(ctx, p)
	case VerbExamine:
		resp = e.handleExamine(ctx, p, cmd.Arg())
	case VerbGo:
		resp = e.handleGo(ctx, p, cmd.Arg())
	case VerbTake:
		resp = e.handleTake(ctx, p, cmd.Arg())
	case VerbDrop:
		resp = e.handleDrop(ctx, p, cmd.Arg())
	case VerbInventory:
		resp = e.handleInventory(p)
	case VerbTalk:
		resp = e.handleTalk(ctx, p, cmd.Args)
	case VerbThemes:
		resp = e.handleThemes()
	case VerbTheme:
		resp = e.handleTheme(cmd.Arg())
	case VerbLearn:
		resp = e.handleLearn(p, cmd.Arg())
	case VerbHelp:
		resp = &Response{Message: helpText}
	case VerbSave:
		resp = &Response{Message: "Progress saved."}
	case VerbQuit:
		resp = &Response{Message: "またね! See you next time.", Quit: true}
	default:
		resp = &Response{Message: unknownText}
	}

	if err := e.store.SavePlayer(ctx, p); err != nil {
		e.logger.Error("failed to save player", "player", p.ID, "error", err)
		resp.Message += "\n(Warning: your progress could not be saved.)"
	}
	return resp
}

// CurrentView materializes the player's location, generating it on a
// first visit. Used by transports to render the opening scene.
func (e *Engine) CurrentView(ctx context.Context, p *state.Player) *world.View {
	loc := e.grid.GetOrCreateLocation(ctx, world.Coordinate{X: p.X, Y: p.Y})
	return e.grid.View(loc)
}

func (e *Engine) handleLook(ctx context.Context, p *state.Player) *Response {
	v := e.CurrentView(ctx, p)
	msg := v.Describe()

	if e.worldgen != nil {
		var itemNames, npcNames []string
		for _, it := range v.Items {
			itemNames = append(itemNames, it.NameEnglish)
		}
		for _, n := range v.NPCs {
			npcNames = append(npcNames, n.NameEnglish)
		}
		extra, err := e.worldgen.EnhancedLook(ctx, v.Location.Setting, itemNames, npcNames)
		if err != nil {
			e.logger.Warn("enhanced look unavailable", "coord", v.Location.Coord.Key(), "error", err)
		} else if extra != "" {
			msg += "\n\n" + extra
		}
	}

	return &Response{
		Message:  msg,
		Location: v,
		ImageKey: cache.KeyLocation + v.Location.Coord.Key(),
	}
}

func (e *Engine) handleExamine(ctx context.Context, p *state.Player, query string) *Response {
	if query == "" {
		return &Response{Message: "Examine what?"}
	}
	coord := world.Coordinate{X: p.X, Y: p.Y}
	it, ok := e.grid.FindItemAt(coord, query)
	if !ok {
		it, ok = e.grid.FindItemIn(p.Inventory, query)
	}
	if !ok {
		return &Response{Message: fmt.Sprintf("You don't see %q here.", query)}
	}

	msg := it.DisplayName() + "\n" + it.Description
	if e.worldgen != nil {
		detail, words, err := e.worldgen.ExamineItem(ctx, it, p.JLPTLevel)
		if err != nil {
			e.logger.Warn("examine generation failed", "item", it.ID, "error", err)
		} else {
			if detail != "" {
				msg += "\n\nUpon closer examination: " + detail
			}
			if len(words) > 0 {
				msg += "\nNew vocabulary: " + strings.Join(words, ", ")
			}
		}
	}
	return &Response{Message: msg}
}

func (e *Engine) handleGo(ctx context.Context, p *state.Player, direction string) *Response {
	v, err := e.grid.Move(ctx, p, direction)
	if err != nil {
		if errors.Is(err, world.ErrInvalidDirection) {
			return &Response{Message: "Which way? Try north, south, east, or west."}
		}
		return &Response{Message: "You can't go that way."}
	}
	return &Response{
		Message:  v.Describe(),
		Location: v,
		ImageKey: cache.KeyLocation + v.Location.Coord.Key(),
	}
}

func (e *Engine) handleTake(ctx context.Context, p *state.Player, query string) *Response {
	if query == "" {
		return &Response{Message: "Take what?"}
	}
	coord := world.Coordinate{X: p.X, Y: p.Y}
	it, err := e.grid.TakeItem(coord, p, query)
	switch {
	case errors.Is(err, world.ErrNotTakeable):
		return &Response{Message: fmt.Sprintf("%s cannot be taken.", it.DisplayName())}
	case err != nil:
		return &Response{Message: fmt.Sprintf("You don't see %q here.", query)}
	}
	loc := e.grid.GetOrCreateLocation(ctx, coord)
	return &Response{
		Message:  fmt.Sprintf("You take %s.", it.DisplayName()),
		Location: e.grid.View(loc),
	}
}

func (e *Engine) handleDrop(ctx context.Context, p *state.Player, query string) *Response {
	if query == "" {
		return &Response{Message: "Drop what?"}
	}
	coord := world.Coordinate{X: p.X, Y: p.Y}
	it, err := e.grid.DropItem(ctx, coord, p, query)
	if err != nil {
		return &Response{Message: fmt.Sprintf("You aren't carrying %q.", query)}
	}
	loc, _ := e.grid.Location(coord)
	return &Response{
		Message:  fmt.Sprintf("You drop %s.", it.DisplayName()),
		Location: e.grid.View(loc),
	}
}

func (e *Engine) handleInventory(p *state.Player) *Response {
	if len(p.Inventory) == 0 {
		return &Response{Message: "You aren't carrying anything."}
	}
	lines := make([]string, 0, len(p.Inventory))
	for _, id := range p.Inventory {
		if it, ok := e.grid.Item(id); ok {
			lines = append(lines, "- "+it.DisplayName())
		}
	}
	return &Response{Message: "You are carrying:\n" + strings.Join(lines, "\n")}
}

// handleTalk greets the NPC when no utterance follows the name, and runs
// a conversation turn otherwise. The first token after the verb is the
// NPC query; the rest is the player's utterance.
func (e *Engine) handleTalk(ctx context.Context, p *state.Player, args []string) *Response {
	if len(args) == 0 {
		return &Response{Message: "Talk to whom?"}
	}
	coord := world.Coordinate{X: p.X, Y: p.Y}
	n, ok := e.grid.FindNPCAt(coord, args[0])
	if !ok {
		return &Response{Message: fmt.Sprintf("There's no one called %q here.", args[0])}
	}

	utterance := strings.Join(args[1:], " ")
	if utterance == "" {
		msg := fmt.Sprintf("%s says: 「%s」", n.DisplayName(), n.Greeting)
		return &Response{Message: msg}
	}

	turn := e.convos.Converse(ctx, n, utterance, p.JLPTLevel)
	msg := fmt.Sprintf("%s: 「%s」\n%s", n.DisplayName(), turn.Japanese, turn.English)
	if turn.LanguageNote != "" {
		msg += "\nNote: " + turn.LanguageNote
	}
	return &Response{Message: msg}
}

func (e *Engine) handleThemes() *Response {
	if e.words == nil {
		return &Response{Message: "The vocabulary catalog isn't available."}
	}
	themes, err := e.words.Themes()
	if err != nil {
		e.logger.Error("failed to list themes", "error", err)
		return &Response{Message: "The vocabulary catalog isn't available."}
	}
	if len(themes) == 0 {
		return &Response{Message: "No vocabulary themes are loaded."}
	}
	lines := make([]string, 0, len(themes)+1)
	lines = append(lines, "Vocabulary themes:")
	for _, t := range themes {
		lines = append(lines, fmt.Sprintf("- %s (%d words): %s", t.Name, len(t.Words), t.Description))
	}
	return &Response{Message: strings.Join(lines, "\n")}
}

func (e *Engine) handleTheme(name string) *Response {
	if e.words == nil {
		return &Response{Message: "The vocabulary catalog isn't available."}
	}
	if name == "" {
		return &Response{Message: "Which theme? Try 'themes' for the list."}
	}
	t, err := e.words.ThemeByName(name)
	if errors.Is(err, vocab.ErrWordNotFound) {
		return &Response{Message: fmt.Sprintf("No theme called %q. Try 'themes' for the list.", name)}
	}
	if err != nil {
		e.logger.Error("failed to load theme", "theme", name, "error", err)
		return &Response{Message: "The vocabulary catalog isn't available."}
	}
	words, err := e.words.ThemeWords(t.ID)
	if err != nil {
		e.logger.Error("failed to load theme words", "theme", t.ID, "error", err)
		return &Response{Message: "The vocabulary catalog isn't available."}
	}
	lines := []string{fmt.Sprintf("%s: %s", t.Name, t.Description)}
	for _, w := range words {
		lines = append(lines, w.Card())
	}
	return &Response{Message: strings.Join(lines, "\n")}
}

func (e *Engine) handleLearn(p *state.Player, query string) *Response {
	if e.words == nil {
		return &Response{Message: "The vocabulary catalog isn't available."}
	}
	if query == "" {
		return &Response{Message: "Learn which word?"}
	}
	w, err := e.words.FindWord(query)
	if errors.Is(err, vocab.ErrWordNotFound) {
		return &Response{Message: fmt.Sprintf("I don't know the word %q.", query)}
	}
	if err != nil {
		e.logger.Error("failed to look up word", "query", query, "error", err)
		return &Response{Message: "The vocabulary catalog isn't available."}
	}
	prof := p.BumpProficiency(w.ID, learnDelta)
	msg := fmt.Sprintf("%s\nProficiency: %d%%", w.Card(), int(prof*100+0.5))
	return &Response{Message: msg}
}
