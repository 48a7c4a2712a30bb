package engine

import "github.com/kotobamud/engine/pkg/world"

// Response is the outcome of one processed command. Location is set
// when the command changed or re-described the player's surroundings;
// transports use ImageKey and the location's ImagePrompt to resolve a
// scene image without blocking command handling.
type Response struct {
	Message  string      `json:"message"`
	Location *world.View `json:"location,omitempty"`
	ImageKey string      `json:"image_key,omitempty"`
	Quit     bool        `json:"quit,omitempty"`
}
