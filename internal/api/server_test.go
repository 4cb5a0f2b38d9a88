package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hungl6844/xcrab/internal/wm"
)

func testSnapshot() wm.Snapshot {
	return wm.Snapshot{
		Focused: 7,
		Clients: 2,
		Root: &wm.SnapshotNode{
			Kind: "pane",
			Axis: "horizontal",
			Rect: wm.Rect{X: 20, Y: 20, W: 1880, H: 1040},
			Children: []*wm.SnapshotNode{
				{Kind: "leaf", Client: 5, Frame: 0x10005, Rect: wm.Rect{X: 20, Y: 20, W: 930, H: 1040}},
				{Kind: "leaf", Client: 7, Frame: 0x10007, Focused: true, Rect: wm.Rect{X: 970, Y: 20, W: 930, H: 1040}},
			},
		},
	}
}

func TestGetTree(t *testing.T) {
	s := NewServer("127.0.0.1:0", testSnapshot)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tree", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var snap wm.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.EqualValues(t, 7, snap.Focused)
	require.NotNil(t, snap.Root)
	assert.Len(t, snap.Root.Children, 2)
}

func TestGetWindows(t *testing.T) {
	s := NewServer("127.0.0.1:0", testSnapshot)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/windows", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var leaves []*wm.SnapshotNode
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&leaves))
	require.Len(t, leaves, 2)
	assert.EqualValues(t, 5, leaves[0].Client)
	assert.True(t, leaves[1].Focused)
}

func TestGetWindowsEmptyTree(t *testing.T) {
	s := NewServer("127.0.0.1:0", func() wm.Snapshot { return wm.Snapshot{} })

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/windows", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestEventFeed(t *testing.T) {
	s := NewServer("127.0.0.1:0", testSnapshot)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Publish until the subscription is registered and a message lands.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				s.Publish(wm.Event{Kind: "focus", Window: 7})
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev wm.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "focus", ev.Kind)
	assert.EqualValues(t, 7, ev.Window)
}
