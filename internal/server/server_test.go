package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kotobamud/engine/internal/engine"
	"github.com/kotobamud/engine/internal/images"
	"github.com/kotobamud/engine/internal/services"
	"github.com/kotobamud/engine/internal/storage"
	"github.com/kotobamud/engine/pkg/dialogue"
	"github.com/kotobamud/engine/pkg/world"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.MockStorage) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	llm := services.NewMockLLMService()
	worldgen := services.NewWorldGen(llm)
	cfg := world.DefaultConfig()
	cfg.NPCProbability = 0

	grid := world.NewGrid(worldgen, cfg, log)
	convos := dialogue.NewManager(llm, 0, log)
	store := storage.NewMockStorage()

	imgs, err := images.NewCache(t.TempDir(), services.NewMockImageService(), log)
	if err != nil {
		t.Fatalf("creating image cache: %v", err)
	}

	eng := engine.NewEngine(grid, convos, worldgen, nil, store, log)
	srv := NewServer(eng, store, imgs, log)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readFrameOfType skips frames until one of the wanted type arrives.
// Image pushes are asynchronous, so interleaving varies run to run.
func readFrameOfType(t *testing.T, conn *websocket.Conn, want string) Frame {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	conn.SetReadDeadline(deadline)
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %q frame: %v", want, err)
		}
		if f.Type == want {
			return f
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, name string) {
	t.Helper()
	if err := conn.WriteJSON(Frame{Type: FrameJoin, Name: name, Level: "N5"}); err != nil {
		t.Fatalf("sending join: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"healthy"`) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestJoinPushesOpeningScene(t *testing.T) {
	ts, store := newTestServer(t)
	conn := dial(t, ts)
	join(t, conn, "Hana")

	welcome := readFrameOfType(t, conn, FrameResponse)
	if !strings.Contains(welcome.Text, "Hana") {
		t.Errorf("welcome = %q", welcome.Text)
	}

	loc := readFrameOfType(t, conn, FrameLocation)
	if loc.Location == nil || loc.Location.Location.Coord != (world.Coordinate{}) {
		t.Errorf("expected origin location, got %+v", loc.Location)
	}

	img := readFrameOfType(t, conn, FrameImage)
	if img.ImageKey != "location:0,0" || !strings.HasPrefix(img.ImageURL, "/images/") {
		t.Errorf("image frame = %+v", img)
	}

	// Joining created and saved the player.
	p, err := store.LoadPlayerByName(context.Background(), "Hana")
	if err != nil || p == nil {
		t.Fatalf("expected persisted player, got %v %v", p, err)
	}
}

func TestCommandRoundTrip(t *testing.T) {
	ts, store := newTestServer(t)
	conn := dial(t, ts)
	join(t, conn, "Hana")
	readFrameOfType(t, conn, FrameLocation)

	if err := conn.WriteJSON(Frame{Type: FrameCommand, Text: "north"}); err != nil {
		t.Fatalf("sending command: %v", err)
	}
	resp := readFrameOfType(t, conn, FrameResponse)
	if resp.Text == "" {
		t.Error("expected a move description")
	}
	loc := readFrameOfType(t, conn, FrameLocation)
	want := world.Coordinate{X: 0, Y: 1}
	if loc.Location.Location.Coord != want {
		t.Errorf("location = %v, want %v", loc.Location.Location.Coord, want)
	}

	p, _ := store.LoadPlayerByName(context.Background(), "Hana")
	if p.Y != 1 {
		t.Errorf("persisted Y = %d, want 1", p.Y)
	}
}

func TestRejoinResumesPlayer(t *testing.T) {
	ts, _ := newTestServer(t)

	conn := dial(t, ts)
	join(t, conn, "Hana")
	readFrameOfType(t, conn, FrameLocation)
	conn.WriteJSON(Frame{Type: FrameCommand, Text: "east"})
	readFrameOfType(t, conn, FrameLocation)
	conn.Close()

	conn2 := dial(t, ts)
	join(t, conn2, "Hana")
	loc := readFrameOfType(t, conn2, FrameLocation)
	want := world.Coordinate{X: 1, Y: 0}
	if loc.Location.Location.Coord != want {
		t.Errorf("resumed at %v, want %v", loc.Location.Location.Coord, want)
	}
}

func TestJoinRequiredFirst(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(Frame{Type: FrameCommand, Text: "look"}); err != nil {
		t.Fatalf("sending command: %v", err)
	}
	f := readFrameOfType(t, conn, FrameError)
	if !strings.Contains(f.Error, "join") {
		t.Errorf("error = %q", f.Error)
	}
}

func TestImageStaticRoute(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	join(t, conn, "Hana")
	img := readFrameOfType(t, conn, FrameImage)

	resp, err := http.Get(ts.URL + img.ImageURL)
	if err != nil {
		t.Fatalf("fetching image: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d for %s", resp.StatusCode, img.ImageURL)
	}
}
