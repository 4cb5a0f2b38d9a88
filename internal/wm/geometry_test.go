package wm

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRectDistributesExactly(t *testing.T) {
	tests := []struct {
		name   string
		length uint16
		n      int
		gap    uint16
	}{
		{name: "even split", length: 1880, n: 2, gap: 20},
		{name: "uneven remainder", length: 1000, n: 3, gap: 10},
		{name: "single child", length: 500, n: 1, gap: 20},
		{name: "many children", length: 1080, n: 7, gap: 4},
		{name: "no gap", length: 99, n: 4, gap: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := Rect{X: 20, Y: 30, W: tt.length, H: 600}
			rects := splitRect(dims, Horizontal, tt.n, tt.gap)
			require.Len(t, rects, tt.n)

			sum, min, max := 0, int(tt.length), 0
			for _, r := range rects {
				sum += int(r.W)
				if int(r.W) < min {
					min = int(r.W)
				}
				if int(r.W) > max {
					max = int(r.W)
				}
				assert.Equal(t, dims.Y, r.Y, "cross axis position preserved")
				assert.Equal(t, dims.H, r.H, "cross axis extent preserved")
			}
			assert.Equal(t, int(tt.length)-int(tt.gap)*(tt.n-1), sum, "widths sum to the usable run")
			assert.LessOrEqual(t, max-min, 1, "children differ by at most one pixel")

			for i := 1; i < len(rects); i++ {
				prevEnd := int(rects[i-1].X) + int(rects[i-1].W)
				assert.Equal(t, prevEnd+int(tt.gap), int(rects[i].X), "gap between siblings")
			}
			last := rects[len(rects)-1]
			assert.Equal(t, int(dims.X)+int(dims.W), int(last.X)+int(last.W), "children fill the run")
		})
	}
}

func TestSplitRectVertical(t *testing.T) {
	dims := Rect{X: 970, Y: 20, W: 930, H: 1040}
	rects := splitRect(dims, Vertical, 2, 20)
	require.Len(t, rects, 2)
	assert.Equal(t, Rect{X: 970, Y: 20, W: 930, H: 510}, rects[0])
	assert.Equal(t, Rect{X: 970, Y: 550, W: 930, H: 510}, rects[1])
}

func TestSplitRectDegeneratesToOnePixel(t *testing.T) {
	dims := Rect{X: 0, Y: 0, W: 10, H: 100}
	rects := splitRect(dims, Horizontal, 8, 5)
	require.Len(t, rects, 8)
	for _, r := range rects {
		assert.GreaterOrEqual(t, int(r.W), 1, "extents never reach zero")
	}
}

func TestRecomputeSameDimsIsStructurallyStable(t *testing.T) {
	tr, frames := newTestTree()
	require.NoError(t, tr.AddClient(1))
	require.NoError(t, tr.AddClientDirection(2, Right))

	before := map[xproto.Window]Rect{}
	for w, r := range frames.configures {
		before[w] = r
	}
	nodesBefore := tr.nodes.len()

	root := tr.nodes.get(tr.root)
	require.NoError(t, tr.recompute(tr.root, root.dims))

	assert.Equal(t, nodesBefore, tr.nodes.len())
	for w, r := range frames.configures {
		assert.Equal(t, before[w], r, "same input dims reproduce the same layout")
	}
}

func TestInnerSizeClampsAtOne(t *testing.T) {
	w, h := innerSize(Rect{W: 8, H: 300}, 5)
	assert.EqualValues(t, 1, w)
	assert.EqualValues(t, 290, h)
}
