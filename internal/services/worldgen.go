package services

import (
	"context"
	"fmt"

	"github.com/kotobamud/engine/pkg/prompts"
	"github.com/kotobamud/engine/pkg/world"
)

// Sampling temperatures per generation kind. Item generation runs
// hottest to keep loot varied; conversations stay cooler.
const (
	locationTemperature = 0.85
	itemTemperature     = 0.95
	npcTemperature      = 0.9
	examineTemperature  = 0.7
)

// WorldGen adapts an LLMService to the world.Generator contract,
// turning structured JSON responses into typed detail records.
type WorldGen struct {
	llm LLMService
}

// NewWorldGen creates a world content generator on top of llm.
func NewWorldGen(llm LLMService) *WorldGen {
	return &WorldGen{llm: llm}
}

// GenerateLocation produces a name/description pair for a new cell.
func (g *WorldGen) GenerateLocation(ctx context.Context, setting string, coord world.Coordinate) (*world.LocationDetails, error) {
	result, err := g.llm.GenerateJSON(ctx, prompts.LocationMessages(setting, coord), prompts.LocationFields, locationTemperature)
	if err != nil {
		return nil, fmt.Errorf("generating location %s: %w", coord.Key(), err)
	}
	return &world.LocationDetails{
		Name:         asString(result, "name"),
		JapaneseName: asString(result, "japanese_name"),
		Description:  asString(result, "description"),
	}, nil
}

// GenerateItem produces one item fitting the setting.
func (g *WorldGen) GenerateItem(ctx context.Context, setting string) (*world.ItemDetails, error) {
	result, err := g.llm.GenerateJSON(ctx, prompts.ItemMessages(setting), prompts.ItemFields, itemTemperature)
	if err != nil {
		return nil, fmt.Errorf("generating item for %q: %w", setting, err)
	}
	return &world.ItemDetails{
		Name:        asString(result, "name"),
		NameEnglish: asString(result, "name_english"),
		NameRomaji:  asString(result, "name_romaji"),
		Description: asString(result, "description"),
		CanBeTaken:  asBool(result, "can_be_taken"),
		Vocabulary:  asStrings(result, "vocabulary"),
	}, nil
}

// GenerateNPC produces one character fitting the setting.
func (g *WorldGen) GenerateNPC(ctx context.Context, setting string) (*world.NPCDetails, error) {
	result, err := g.llm.GenerateJSON(ctx, prompts.NPCMessages(setting), prompts.NPCFields, npcTemperature)
	if err != nil {
		return nil, fmt.Errorf("generating npc for %q: %w", setting, err)
	}
	return &world.NPCDetails{
		Name:        asString(result, "name"),
		NameEnglish: asString(result, "name_english"),
		Description: asString(result, "short_description"),
		Role:        asString(result, "role"),
		Personality: asString(result, "personality"),
		Greeting:    asString(result, "greeting"),
		Vocabulary:  asStrings(result, "vocabulary"),
	}, nil
}

// ExamineItem produces a close-up description with an invented
// inscription, plus the vocabulary it introduces. The caller combines
// it with the item's base description and supplies the fallback.
func (g *WorldGen) ExamineItem(ctx context.Context, item *world.Item, jlptLevel string) (string, []string, error) {
	result, err := g.llm.GenerateJSON(ctx, prompts.ExamineMessages(item, jlptLevel), prompts.ExamineFields, examineTemperature)
	if err != nil {
		return "", nil, fmt.Errorf("examining %s: %w", item.ID, err)
	}
	return asString(result, "description"), asStrings(result, "vocabulary"), nil
}

// EnhancedLook produces an atmospheric paragraph weaving the setting,
// items and people together.
func (g *WorldGen) EnhancedLook(ctx context.Context, setting string, itemNames, npcNames []string) (string, error) {
	resp, err := g.llm.GetChatResponse(ctx, prompts.LookMessages(setting, itemNames, npcNames))
	if err != nil {
		return "", fmt.Errorf("enhanced look for %q: %w", setting, err)
	}
	return resp.Message, nil
}

func asString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func asBool(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func asStrings(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
