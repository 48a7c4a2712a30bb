package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/kotobamud/engine/pkg/cache"
	"github.com/kotobamud/engine/pkg/state"
)

var (
	// ErrInvalidDirection is returned by Move for tokens outside the
	// four cardinal directions and their aliases.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrNotFound means the named item or NPC is not present in the
	// queried container. It is a player-message condition, distinct
	// from generation failures.
	ErrNotFound = errors.New("not found")

	// ErrNotTakeable means the item exists here but is a fixture.
	ErrNotTakeable = errors.New("item cannot be taken")
)

// DefaultSettings is the reference setting pool. A location's setting
// biases generation prompts and picks the fallback visual style.
var DefaultSettings = []string{
	"Residential Neighborhood",
	"Small Urban Park",
	"Quiet Shopping Street",
	"Path near a Small Shrine",
	"Empty Field",
	"Riverside Path",
}

// Config carries the grid tuning knobs. The defaults mirror the
// reference values; none of them is a correctness invariant.
type Config struct {
	Settings       []string
	StartSetting   string  // fixed setting for the origin cell
	NPCProbability float64 // chance of attempting one NPC per new location
	ItemAttempts   int     // item generation attempts per new location
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		Settings:       DefaultSettings,
		StartSetting:   "Quiet Shopping Street",
		NPCProbability: 0.70,
		ItemAttempts:   1,
	}
}

// Grid owns the coordinate-to-location mapping and the item/NPC catalog.
// It is shared across player sessions; all methods are safe for
// concurrent use, and location generation is exactly-once per coordinate.
type Grid struct {
	gen    Generator
	cfg    Config
	logger *slog.Logger

	locations *cache.Store[*Location]

	mu      sync.RWMutex // guards items, npcs, and location item sets
	items   map[string]*Item
	npcs    map[string]*NPC
	counter int64 // catalog id counter, guarded by mu

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGrid creates an empty grid. The generator may be nil only in tests
// that never touch an unvisited coordinate.
func NewGrid(gen Generator, cfg Config, logger *slog.Logger) *Grid {
	if len(cfg.Settings) == 0 {
		cfg.Settings = DefaultSettings
	}
	if cfg.ItemAttempts == 0 {
		cfg.ItemAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Grid{
		gen:       gen,
		cfg:       cfg,
		logger:    logger,
		locations: cache.NewStore[*Location](),
		items:     make(map[string]*Item),
		npcs:      make(map[string]*NPC),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetOrCreateLocation returns the location at coord, generating it on
// first visit. It never fails and never returns nil: generation errors
// degrade to deterministic fallback content. Concurrent first visits to
// the same coordinate produce exactly one generation pass; late callers
// block until the winner stores the result.
func (g *Grid) GetOrCreateLocation(ctx context.Context, coord Coordinate) *Location {
	return g.locations.GetOrGenerate(ctx, cache.KeyLocation+coord.Key(), func(ctx context.Context) *Location {
		return g.generateLocation(ctx, coord)
	})
}

// Location returns the location at coord without generating, for
// callers that only want already-visited cells.
func (g *Grid) Location(coord Coordinate) (*Location, bool) {
	return g.locations.Get(cache.KeyLocation + coord.Key())
}

// Move resolves direction against the player's coordinate, creates the
// target location if needed, updates the player's position and returns
// the view. The only error is an invalid direction token.
func (g *Grid) Move(ctx context.Context, p *state.Player, direction string) (*View, error) {
	d, ok := ParseDirection(direction)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	dx, dy := d.Delta()
	target := Coordinate{X: p.X, Y: p.Y}.Add(dx, dy)
	loc := g.GetOrCreateLocation(ctx, target)
	p.X, p.Y = target.X, target.Y
	return g.View(loc), nil
}

// View resolves a location's item and NPC ids into full records plus
// the sorted exit list.
func (g *Grid) View(loc *Location) *View {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v := &View{
		Location: loc,
		Items:    make([]*Item, 0, len(loc.ItemIDs)),
		NPCs:     make([]*NPC, 0, len(loc.NPCIDs)),
	}
	for _, id := range loc.ItemIDs {
		if it, ok := g.items[id]; ok {
			v.Items = append(v.Items, it)
		}
	}
	for _, id := range loc.NPCIDs {
		if n, ok := g.npcs[id]; ok {
			v.NPCs = append(v.NPCs, n)
		}
	}
	for _, d := range AllDirections() {
		if _, ok := loc.Exits[d]; ok {
			v.Exits = append(v.Exits, d)
		}
	}
	return v
}

// FindItemAt matches query against the items present at coord.
// Tie order among multiple matches is unspecified.
func (g *Grid) FindItemAt(coord Coordinate, query string) (*Item, bool) {
	loc, ok := g.Location(coord)
	if !ok {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range loc.ItemIDs {
		if it, ok := g.items[id]; ok && it.Matches(query) {
			return it, true
		}
	}
	return nil, false
}

// FindItemIn matches query against a player inventory id list.
func (g *Grid) FindItemIn(inventory []string, query string) (*Item, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range inventory {
		if it, ok := g.items[id]; ok && it.Matches(query) {
			return it, true
		}
	}
	return nil, false
}

// FindNPCAt matches query against the NPCs present at coord.
func (g *Grid) FindNPCAt(coord Coordinate, query string) (*NPC, bool) {
	loc, ok := g.Location(coord)
	if !ok {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range loc.NPCIDs {
		if n, ok := g.npcs[id]; ok && n.Matches(query) {
			return n, true
		}
	}
	return nil, false
}

// Item looks up an item record by exact id.
func (g *Grid) Item(id string) (*Item, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	it, ok := g.items[id]
	return it, ok
}

// TakeItem transfers the first item matching query from the location at
// coord into the player's inventory. The transfer is atomic: at no point
// is the item in both or neither container.
func (g *Grid) TakeItem(coord Coordinate, p *state.Player, query string) (*Item, error) {
	loc, ok := g.Location(coord)
	if !ok {
		return nil, ErrNotFound
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range loc.ItemIDs {
		it, present := g.items[id]
		if !present || !it.Matches(query) {
			continue
		}
		if !it.CanBeTaken {
			return it, ErrNotTakeable
		}
		loc.removeItem(id)
		p.AddItem(id)
		return it, nil
	}
	return nil, ErrNotFound
}

// DropItem transfers the first inventory item matching query into the
// location at coord.
func (g *Grid) DropItem(ctx context.Context, coord Coordinate, p *state.Player, query string) (*Item, error) {
	loc := g.GetOrCreateLocation(ctx, coord)
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range p.Inventory {
		it, present := g.items[id]
		if !present || !it.Matches(query) {
			continue
		}
		p.RemoveItem(id)
		if !loc.hasItem(id) {
			loc.ItemIDs = append(loc.ItemIDs, id)
		}
		return it, nil
	}
	return nil, ErrNotFound
}

// generateLocation builds a brand-new location for coord. Runs under the
// per-coordinate cache lock, at most once per coordinate.
func (g *Grid) generateLocation(ctx context.Context, coord Coordinate) *Location {
	setting := g.pickSetting(coord)

	loc := &Location{
		ID:      coord.LocationID(),
		Coord:   coord,
		Setting: setting,
		Exits:   make(map[Direction]Coordinate, 4),
		ItemIDs: make([]string, 0, 1),
		NPCIDs:  make([]string, 0, 1),
	}

	// The grid is unbounded, so every neighbor is reachable.
	for d := range deltas {
		dx, dy := d.Delta()
		loc.Exits[d] = coord.Add(dx, dy)
	}

	details, err := g.gen.GenerateLocation(ctx, setting, coord)
	if err != nil {
		g.logger.Warn("location generation failed, using fallback",
			"coord", coord.Key(), "setting", setting, "error", err)
		details = fallbackLocation(setting, coord)
	}
	loc.Name = details.Name
	loc.JapaneseName = details.JapaneseName
	loc.Description = details.Description

	var itemNames, npcNames []string
	for i := 0; i < g.cfg.ItemAttempts; i++ {
		if it := g.generateItem(ctx, coord, setting); it != nil {
			loc.ItemIDs = append(loc.ItemIDs, it.ID)
			itemNames = append(itemNames, it.NameEnglish)
		}
	}
	if g.rollNPC() {
		if n := g.generateNPC(ctx, coord, setting); n != nil {
			loc.NPCIDs = append(loc.NPCIDs, n.ID)
			npcNames = append(npcNames, n.NameEnglish)
		}
	}

	loc.ImagePrompt = buildImagePrompt(loc.Description, setting, itemNames, npcNames)

	g.logger.Debug("created location",
		"coord", coord.Key(), "setting", setting, "name", loc.Name,
		"items", len(loc.ItemIDs), "npcs", len(loc.NPCIDs))
	return loc
}

// generateItem attempts one item for a new location. A generation
// failure means no item, never an error.
func (g *Grid) generateItem(ctx context.Context, coord Coordinate, setting string) *Item {
	details, err := g.gen.GenerateItem(ctx, setting)
	if err != nil {
		g.logger.Warn("item generation failed", "coord", coord.Key(), "error", err)
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	it := &Item{
		ID:          fmt.Sprintf("item_%s_%d", coord.Key(), g.counter),
		Name:        details.Name,
		NameEnglish: details.NameEnglish,
		NameRomaji:  details.NameRomaji,
		Description: details.Description,
		CanBeTaken:  details.CanBeTaken,
		Vocabulary:  details.Vocabulary,
	}
	g.items[it.ID] = it
	return it
}

// generateNPC attempts one NPC for a new location.
func (g *Grid) generateNPC(ctx context.Context, coord Coordinate, setting string) *NPC {
	details, err := g.gen.GenerateNPC(ctx, setting)
	if err != nil {
		g.logger.Warn("npc generation failed", "coord", coord.Key(), "error", err)
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	n := &NPC{
		ID:          fmt.Sprintf("npc_%s_%d", coord.Key(), g.counter),
		Name:        details.Name,
		NameEnglish: details.NameEnglish,
		Description: details.Description,
		Role:        details.Role,
		Personality: details.Personality,
		Greeting:    details.Greeting,
		Vocabulary:  details.Vocabulary,
	}
	g.npcs[n.ID] = n
	return n
}

// pickSetting draws a setting uniformly at random, independent of the
// neighbors' settings. The origin always gets the start setting.
func (g *Grid) pickSetting(coord Coordinate) string {
	if coord == (Coordinate{}) && g.cfg.StartSetting != "" {
		return g.cfg.StartSetting
	}
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return g.cfg.Settings[g.rng.Intn(len(g.cfg.Settings))]
}

func (g *Grid) rollNPC() bool {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return g.rng.Float64() < g.cfg.NPCProbability
}

// fallbackLocation synthesizes deterministic content so the grid never
// holds an unfilled cell.
func fallbackLocation(setting string, coord Coordinate) *LocationDetails {
	return &LocationDetails{
		Name:         fmt.Sprintf("%s at %s", setting, coord),
		JapaneseName: fmt.Sprintf("%s (%d,%d)", setting, coord.X, coord.Y),
		Description:  fmt.Sprintf("A procedurally generated %s at %s.", strings.ToLower(setting), coord),
	}
}

func buildImagePrompt(description, setting string, itemNames, npcNames []string) string {
	prompt := fmt.Sprintf("%s Setting: %s. Style: photorealistic.", description, setting)
	if len(itemNames) > 0 {
		prompt += fmt.Sprintf(" Items visible: %s.", strings.Join(itemNames, ", "))
	}
	if len(npcNames) > 0 {
		prompt += fmt.Sprintf(" People present: %s.", strings.Join(npcNames, ", "))
	}
	return prompt
}
