package wm

import (
	"fmt"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hungl6844/xcrab/internal/config"
	"github.com/hungl6844/xcrab/internal/x11"
)

// fakeFramer records the framing calls the tree issues instead of talking to
// an X server.
type fakeFramer struct {
	rootGeom   Rect
	failFrame  bool
	configures map[xproto.Window]Rect
	focused    []xproto.Window
	ops        []string
}

func newFakeFramer() *fakeFramer {
	return &fakeFramer{
		rootGeom:   Rect{X: 0, Y: 0, W: 1920, H: 1080},
		configures: make(map[xproto.Window]Rect),
	}
}

func (f *fakeFramer) Frame(win xproto.Window) (FramedWin, error) {
	if f.failFrame {
		return FramedWin{}, xproto.WindowError{BadValue: uint32(win)}
	}
	f.ops = append(f.ops, fmt.Sprintf("frame %d", win))
	return FramedWin{Frame: win + 0x10000, Client: win}, nil
}

func (f *fakeFramer) Configure(fw FramedWin, rect Rect, focused xproto.Window) error {
	f.configures[fw.Client] = rect
	f.ops = append(f.ops, fmt.Sprintf("configure %d", fw.Client))
	return nil
}

func (f *fakeFramer) Map(fw FramedWin) error {
	f.ops = append(f.ops, fmt.Sprintf("map %d", fw.Client))
	return nil
}

func (f *fakeFramer) Unmap(fw FramedWin) error {
	f.ops = append(f.ops, fmt.Sprintf("unmap %d", fw.Client))
	return nil
}

func (f *fakeFramer) Unframe(fw FramedWin) error {
	f.ops = append(f.ops, fmt.Sprintf("unframe %d", fw.Client))
	return nil
}

func (f *fakeFramer) KillClient(fw FramedWin) error {
	f.ops = append(f.ops, fmt.Sprintf("kill %d", fw.Client))
	return nil
}

func (f *fakeFramer) Focus(win xproto.Window) error {
	f.focused = append(f.focused, win)
	return nil
}

func (f *fakeFramer) RootGeometry() (Rect, error) {
	return f.rootGeom, nil
}

func testConfig() *config.Config {
	return &config.Config{
		BorderColor:  0xff0000,
		FocusedColor: 0x0000ff,
		BorderSize:   5,
		GapSize:      20,
		OuterGapSize: 20,
	}
}

func newTestTree() (*Tree, *fakeFramer) {
	frames := newFakeFramer()
	return NewTree(frames, testConfig()), frames
}

// checkInvariants verifies the structural invariants that must hold after
// every public operation.
func checkInvariants(t *testing.T, tr *Tree) {
	t.Helper()

	if !tr.hasRoot {
		assert.Empty(t, tr.clients, "no root implies no clients")
		assert.EqualValues(t, 0, tr.focused, "no root implies no focus")
		return
	}

	root := tr.nodes.get(tr.root)
	require.NotNil(t, root, "root handle must resolve")
	assert.Equal(t, tr.root, root.parent, "root must be its own parent")

	// Walk the tree from the root, checking parent links and geometry.
	seenLeaves := make(map[xproto.Window]NodeId)
	selfParented := 0
	var walk func(id NodeId)
	walk = func(id NodeId) {
		node := tr.nodes.get(id)
		require.NotNil(t, node, "child handle must resolve")
		if node.parent == id {
			selfParented++
		}
		switch b := node.body.(type) {
		case *leaf:
			seenLeaves[b.framed.Client] = id
		case *pane:
			for _, child := range b.children {
				c := tr.nodes.get(child)
				require.NotNil(t, c)
				assert.Equal(t, id, c.parent, "child's parent must be the pane")
				walk(child)
			}
			// Siblings are disjoint along the split axis and stay inside the
			// parent rectangle.
			var prevEnd int
			for i, child := range b.children {
				c := tr.nodes.get(child)
				if b.axis == Horizontal {
					assert.GreaterOrEqual(t, int(c.dims.X), int(node.dims.X))
					assert.LessOrEqual(t, int(c.dims.X)+int(c.dims.W), int(node.dims.X)+int(node.dims.W))
					if i > 0 {
						assert.GreaterOrEqual(t, int(c.dims.X), prevEnd, "siblings must not overlap")
					}
					prevEnd = int(c.dims.X) + int(c.dims.W)
				} else {
					assert.GreaterOrEqual(t, int(c.dims.Y), int(node.dims.Y))
					assert.LessOrEqual(t, int(c.dims.Y)+int(c.dims.H), int(node.dims.Y)+int(node.dims.H))
					if i > 0 {
						assert.GreaterOrEqual(t, int(c.dims.Y), prevEnd, "siblings must not overlap")
					}
					prevEnd = int(c.dims.Y) + int(c.dims.H)
				}
			}
		}
	}
	walk(tr.root)

	assert.Equal(t, 1, selfParented, "exactly one self-parented node")
	assert.Equal(t, len(tr.clients), len(seenLeaves), "every leaf reachable, every client a leaf")
	for win, id := range tr.clients {
		node := tr.nodes.get(id)
		require.NotNil(t, node, "client handle must resolve")
		lf, ok := node.body.(*leaf)
		require.True(t, ok, "client nodes must be leaves")
		assert.Equal(t, win, lf.framed.Client)
		assert.Equal(t, id, seenLeaves[win])
	}
	if tr.focused != 0 {
		assert.Contains(t, tr.clients, tr.focused, "focused must be a client")
	} else {
		assert.Empty(t, tr.clients)
	}
}

func TestAddFirstClientFillsRootMinusOuterGap(t *testing.T) {
	tr, frames := newTestTree()

	require.NoError(t, tr.AddClient(1))
	checkInvariants(t, tr)

	assert.Equal(t, Rect{X: 20, Y: 20, W: 1880, H: 1040}, frames.configures[1])
	assert.EqualValues(t, 1, tr.Focused())
	assert.Contains(t, frames.ops, "map 1")
	assert.Equal(t, []xproto.Window{1}, frames.focused)
}

func TestAddClientRightSplitsHorizontally(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))

	require.NoError(t, tr.AddClientDirection(2, Right))
	checkInvariants(t, tr)

	assert.Equal(t, Rect{X: 20, Y: 20, W: 930, H: 1040}, frames.configures[1])
	assert.Equal(t, Rect{X: 970, Y: 20, W: 930, H: 1040}, frames.configures[2])
	assert.EqualValues(t, 2, tr.Focused())
}

func TestAddClientDownWrapsFocusedColumn(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))

	require.NoError(t, tr.AddClientDirection(3, Down))
	checkInvariants(t, tr)

	// W1 keeps its column, W2 and W3 split the right one vertically.
	assert.Equal(t, Rect{X: 20, Y: 20, W: 930, H: 1040}, frames.configures[1])
	assert.Equal(t, Rect{X: 970, Y: 20, W: 930, H: 510}, frames.configures[2])
	assert.Equal(t, Rect{X: 970, Y: 550, W: 930, H: 510}, frames.configures[3])
	assert.EqualValues(t, 3, tr.Focused())
}

func TestRemoveClientGivesSpaceToSiblings(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))
	require.NoError(t, tr.AddClientDirection(3, Down))

	require.NoError(t, tr.RemoveClient(2))
	checkInvariants(t, tr)

	assert.Contains(t, frames.ops, "unframe 2")
	assert.Equal(t, Rect{X: 20, Y: 20, W: 930, H: 1040}, frames.configures[1])
	assert.Equal(t, Rect{X: 970, Y: 20, W: 930, H: 1040}, frames.configures[3])
	assert.EqualValues(t, 3, tr.Focused())
}

func TestAddUpInsertsBeforeFocused(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))

	require.NoError(t, tr.AddClientDirection(2, Up))
	checkInvariants(t, tr)

	// W2 lands above W1.
	assert.Equal(t, Rect{X: 20, Y: 20, W: 1880, H: 510}, frames.configures[2])
	assert.Equal(t, Rect{X: 20, Y: 550, W: 1880, H: 510}, frames.configures[1])
}

func TestAddReusesMatchingAncestorPane(t *testing.T) {
	tr, _ := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))
	require.NoError(t, tr.AddClientDirection(3, Down))

	// Focused is 3 inside the vertical pane; a Right insert must climb back
	// to the horizontal root pane instead of wrapping the leaf.
	require.NoError(t, tr.AddClientDirection(4, Right))
	checkInvariants(t, tr)

	rootPane := tr.nodes.get(tr.root).mustPane()
	assert.Equal(t, Horizontal, rootPane.axis)
	assert.Len(t, rootPane.children, 3)
}

func TestAddClientDirectionImmediateWrapsLocally(t *testing.T) {
	tr, _ := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))
	require.NoError(t, tr.AddClientDirection(3, Down))

	// The immediate variant wraps the focused leaf even though a horizontal
	// ancestor exists further up.
	require.NoError(t, tr.AddClientDirectionImmediate(4, Right))
	checkInvariants(t, tr)

	rootPane := tr.nodes.get(tr.root).mustPane()
	assert.Len(t, rootPane.children, 2)

	leafId := tr.clients[4]
	parent := tr.nodes.get(tr.nodes.get(leafId).parent).mustPane()
	assert.Equal(t, Horizontal, parent.axis)
	assert.Len(t, parent.children, 2)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))
	before := frames.configures[1]
	focusBefore := tr.Focused()

	require.NoError(t, tr.AddClientDirection(2, Right))
	require.NoError(t, tr.RemoveClient(2))
	checkInvariants(t, tr)

	assert.Equal(t, 1, tr.ClientCount())
	assert.Equal(t, focusBefore, tr.Focused())
	assert.Equal(t, before, frames.configures[1], "surviving leaf regains its area")
}

func TestRemoveLastClientClearsFocus(t *testing.T) {
	tr, _ := newTestTree()
	require.NoError(t, tr.AddClient(1))

	require.NoError(t, tr.RemoveClient(1))
	checkInvariants(t, tr)

	assert.EqualValues(t, 0, tr.Focused())
	assert.Equal(t, 0, tr.ClientCount())
	assert.False(t, tr.hasRoot)
	assert.Equal(t, 0, tr.nodes.len(), "no nodes may leak")
}

func TestRemoveUnknownClientIsInvariantViolation(t *testing.T) {
	tr, _ := newTestTree()
	err := tr.RemoveClient(99)
	assert.ErrorIs(t, err, x11.ErrClientMissing)
}

func TestSetFocusIsIdempotent(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))

	require.NoError(t, tr.SetFocus(1))
	dims := frames.configures[1]
	require.NoError(t, tr.SetFocus(1))
	checkInvariants(t, tr)

	assert.EqualValues(t, 1, tr.Focused())
	assert.Equal(t, dims, frames.configures[1])
}

func TestSetFocusUnknownWindow(t *testing.T) {
	tr, _ := newTestTree()
	require.NoError(t, tr.AddClient(1))
	assert.ErrorIs(t, tr.SetFocus(42), x11.ErrClientMissing)
}

func TestFocusDirectionWalksTheTree(t *testing.T) {
	tr, _ := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))
	require.NoError(t, tr.AddClientDirection(3, Down))

	require.NoError(t, tr.FocusDirection(Up))
	assert.EqualValues(t, 2, tr.Focused())

	require.NoError(t, tr.FocusDirection(Left))
	assert.EqualValues(t, 1, tr.Focused())

	// From W1 a Right move enters the column and lands on its first leaf.
	require.NoError(t, tr.FocusDirection(Right))
	assert.EqualValues(t, 2, tr.Focused())

	// No neighbour above the top of the column.
	require.NoError(t, tr.FocusDirection(Up))
	assert.EqualValues(t, 2, tr.Focused())
}

func TestFocusDirectionWithoutClients(t *testing.T) {
	tr, _ := newTestTree()
	assert.NoError(t, tr.FocusDirection(Left))
}

func TestDestroyFocusedClientRemovesBeforeKilling(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))

	require.NoError(t, tr.DestroyFocusedClient())
	checkInvariants(t, tr)

	assert.Equal(t, 1, tr.ClientCount())
	unframeIdx := -1
	killIdx := -1
	for i, op := range frames.ops {
		switch op {
		case "unframe 2":
			unframeIdx = i
		case "kill 2":
			killIdx = i
		}
	}
	require.GreaterOrEqual(t, unframeIdx, 0)
	require.GreaterOrEqual(t, killIdx, 0)
	assert.Less(t, unframeIdx, killIdx, "bookkeeping must be gone before the kill")
}

func TestDestroyFocusedClientNoFocus(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.DestroyFocusedClient())
	assert.Empty(t, frames.ops)
}

func TestAddClientSwallowsVanishedWindow(t *testing.T) {
	tr, frames := newTestTree()
	frames.failFrame = true

	require.NoError(t, tr.AddClient(1))
	checkInvariants(t, tr)
	assert.Equal(t, 0, tr.ClientCount())
}

func TestAddKnownClientIsNoOp(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))
	opsBefore := len(frames.ops)

	require.NoError(t, tr.AddClient(1))
	assert.Equal(t, opsBefore, len(frames.ops))
}

func TestSnapshotMirrorsTree(t *testing.T) {
	tr, _ := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))
	require.NoError(t, tr.AddClientDirection(3, Down))

	snap := tr.Snapshot()
	assert.EqualValues(t, 3, snap.Focused)
	assert.Equal(t, 3, snap.Clients)
	require.NotNil(t, snap.Root)
	assert.Equal(t, "pane", snap.Root.Kind)
	assert.Equal(t, "horizontal", snap.Root.Axis)

	leaves := snap.Leaves()
	require.Len(t, leaves, 3)
	var focusedLeaves int
	for _, l := range leaves {
		if l.Focused {
			focusedLeaves++
			assert.EqualValues(t, 3, l.Client)
		}
	}
	assert.Equal(t, 1, focusedLeaves)
}

func TestNodeHandlesSurviveUnrelatedRemovals(t *testing.T) {
	tr, _ := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))
	require.NoError(t, tr.AddClientDirection(3, Right))

	id1 := tr.clients[1]
	require.NoError(t, tr.RemoveClient(2))

	node := tr.nodes.get(id1)
	require.NotNil(t, node, "handle must survive an unrelated removal")
	assert.EqualValues(t, 1, node.mustLeaf().framed.Client)
}
