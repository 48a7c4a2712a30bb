package server

import "github.com/kotobamud/engine/pkg/world"

// Frame types exchanged over the WebSocket. The client sends join and
// command frames; the server sends the rest.
const (
	FrameJoin     = "join"
	FrameCommand  = "command"
	FrameResponse = "response"
	FrameLocation = "location"
	FrameImage    = "image"
	FrameError    = "error"
)

// Frame is the single JSON envelope for both directions. Unused fields
// are omitted per frame type.
type Frame struct {
	Type string `json:"type"`

	// join
	Name  string `json:"name,omitempty"`
	Level string `json:"level,omitempty"`

	// command input and response text
	Text string `json:"text,omitempty"`

	// location pushes
	Location *world.View `json:"location,omitempty"`

	// image pushes
	ImageKey string `json:"image_key,omitempty"`
	ImageURL string `json:"image_url,omitempty"`

	Error string `json:"error,omitempty"`
}
