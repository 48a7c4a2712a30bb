package server

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kotobamud/engine/pkg/cache"
	"github.com/kotobamud/engine/pkg/state"
	"github.com/kotobamud/engine/pkg/world"
)

// session is one connected player. Command frames are handled strictly
// in order on the read loop; only image pushes leave that path.
type session struct {
	srv  *Server
	conn *websocket.Conn

	mu     sync.Mutex // guards player between the read loop and image pushes
	player *state.Player

	writeMu sync.Mutex // serializes frames onto the socket
}

func newSession(srv *Server, conn *websocket.Conn) *session {
	return &session{srv: srv, conn: conn}
}

// run drives the session until the client disconnects or quits. The
// first frame must be a join; everything after is commands.
func (s *session) run(ctx context.Context) {
	defer s.conn.Close()

	var join Frame
	if err := s.conn.ReadJSON(&join); err != nil {
		s.srv.logger.Warn("failed to read join frame", "error", err)
		return
	}
	if join.Type != FrameJoin || join.Name == "" {
		s.writeFrame(Frame{Type: FrameError, Error: "expected a join frame with a player name"})
		return
	}
	if err := s.join(ctx, join.Name, join.Level); err != nil {
		s.srv.logger.Error("join failed", "name", join.Name, "error", err)
		s.writeFrame(Frame{Type: FrameError, Error: "could not start your session"})
		return
	}

	for {
		var frame Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			s.srv.logger.Info("websocket session closed", "player", s.player.ID, "error", err)
			return
		}
		if frame.Type != FrameCommand {
			s.writeFrame(Frame{Type: FrameError, Error: fmt.Sprintf("unexpected frame type %q", frame.Type)})
			continue
		}
		if quit := s.handleCommand(ctx, frame.Text); quit {
			return
		}
	}
}

// join resolves the player by name, creating a fresh one at the origin
// on first contact, then pushes the opening scene.
func (s *session) join(ctx context.Context, name, level string) error {
	p, err := s.srv.store.LoadPlayerByName(ctx, name)
	if err != nil {
		return fmt.Errorf("loading player %q: %w", name, err)
	}
	if p == nil {
		p = state.NewPlayer(name, level)
		if err := s.srv.store.SavePlayer(ctx, p); err != nil {
			return fmt.Errorf("saving new player: %w", err)
		}
		s.srv.logger.Info("created player", "player", p.ID, "name", name, "level", p.JLPTLevel)
	}
	s.mu.Lock()
	s.player = p
	s.mu.Unlock()

	v := s.srv.engine.CurrentView(ctx, p)
	s.writeFrame(Frame{
		Type: FrameResponse,
		Text: fmt.Sprintf("ようこそ、%sさん! Welcome.\n\n%s", p.Name, v.Describe()),
	})
	s.writeFrame(Frame{Type: FrameLocation, Location: v})
	s.pushImage(ctx, v.Location)
	return nil
}

// handleCommand runs one command and reports whether the player quit.
func (s *session) handleCommand(ctx context.Context, text string) bool {
	s.mu.Lock()
	resp := s.srv.engine.ProcessCommand(ctx, s.player, text)
	s.mu.Unlock()

	s.writeFrame(Frame{Type: FrameResponse, Text: resp.Message})
	if resp.Location != nil {
		s.writeFrame(Frame{Type: FrameLocation, Location: resp.Location})
		s.pushImage(ctx, resp.Location.Location)
	}
	return resp.Quit
}

// pushImage resolves the scene image off the command path and sends it
// when ready. A push for a location the player has already left is
// dropped rather than delivered late.
func (s *session) pushImage(ctx context.Context, loc *world.Location) {
	if s.srv.images == nil || loc == nil {
		return
	}
	key := cache.KeyLocation + loc.Coord.Key()
	go func() {
		path := s.srv.images.GetOrGenerate(ctx, key, loc.ImagePrompt, loc.Setting)

		s.mu.Lock()
		stale := s.player.X != loc.Coord.X || s.player.Y != loc.Coord.Y
		s.mu.Unlock()
		if stale {
			s.srv.logger.Debug("dropping stale image push", "key", key, "player", s.player.ID)
			return
		}
		s.writeFrame(Frame{
			Type:     FrameImage,
			ImageKey: key,
			ImageURL: "/images/" + filepath.Base(path),
		})
	}()
}

func (s *session) writeFrame(f Frame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(f); err != nil {
		s.srv.logger.Warn("failed to write frame", "type", f.Type, "error", err)
	}
}
