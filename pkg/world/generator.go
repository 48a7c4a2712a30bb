package world

import "context"

// LocationDetails is the structured result of a location generation call.
type LocationDetails struct {
	Name         string `json:"name"`
	JapaneseName string `json:"japanese_name"`
	Description  string `json:"description"`
}

// ItemDetails is the structured result of an item generation call.
type ItemDetails struct {
	Name        string   `json:"name"`
	NameEnglish string   `json:"name_english"`
	NameRomaji  string   `json:"name_romaji"`
	Description string   `json:"description"`
	CanBeTaken  bool     `json:"can_be_taken"`
	Vocabulary  []string `json:"vocabulary"`
}

// NPCDetails is the structured result of an NPC generation call.
type NPCDetails struct {
	Name        string   `json:"name"`
	NameEnglish string   `json:"name_english"`
	Description string   `json:"short_description"`
	Role        string   `json:"role"`
	Personality string   `json:"personality"`
	Greeting    string   `json:"greeting"`
	Vocabulary  []string `json:"vocabulary"`
}

// Generator produces world content from an external text-generation
// service. Every method returns an error for any service failure
// (timeout, malformed response, missing fields, missing credentials);
// the grid absorbs those errors with fallback or absent content and
// never retries.
type Generator interface {
	GenerateLocation(ctx context.Context, setting string, coord Coordinate) (*LocationDetails, error)
	GenerateItem(ctx context.Context, setting string) (*ItemDetails, error)
	GenerateNPC(ctx context.Context, setting string) (*NPCDetails, error)
}
