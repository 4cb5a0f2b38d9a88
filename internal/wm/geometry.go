package wm

import "fmt"

type workItem struct {
	id   NodeId
	dims Rect
}

// recompute writes dims into the subtree rooted at id, splitting pane areas
// among children and configuring every leaf's frame. The traversal uses an
// explicit work stack since each leaf issues X I/O.
func (t *Tree) recompute(id NodeId, dims Rect) error {
	stack := []workItem{{id: id, dims: dims}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := t.nodes.get(it.id)
		if node == nil {
			return fmt.Errorf("recompute reached a stale node handle")
		}
		node.dims = it.dims

		switch b := node.body.(type) {
		case *leaf:
			if err := t.frames.Configure(b.framed, it.dims, t.focused); err != nil {
				return err
			}
		case *pane:
			if len(b.children) == 0 {
				continue
			}
			rects := splitRect(it.dims, b.axis, len(b.children), t.cfg.GapSize)
			for i, child := range b.children {
				stack = append(stack, workItem{id: child, dims: rects[i]})
			}
		}
	}
	return nil
}

// splitRect divides dims into n sub-rectangles along axis, inserting gap
// pixels between siblings. The usable run U = L - gap*(n-1) is distributed as
// floor(U/n) per child with the first U mod n children one pixel wider, so the
// child lengths sum to U exactly. The cross axis is preserved.
func splitRect(dims Rect, axis Axis, n int, gap uint16) []Rect {
	var length int
	if axis == Horizontal {
		length = int(dims.W)
	} else {
		length = int(dims.H)
	}

	usable := length - int(gap)*(n-1)
	if usable < n {
		// Too many children for the run; degrade to one pixel each.
		usable = n
	}
	base := usable / n
	extra := usable % n

	rects := make([]Rect, n)
	var pos int
	if axis == Horizontal {
		pos = int(dims.X)
	} else {
		pos = int(dims.Y)
	}
	for i := range rects {
		l := base
		if i < extra {
			l++
		}
		if axis == Horizontal {
			rects[i] = Rect{X: satInt16(pos), Y: dims.Y, W: satUint16(l), H: dims.H}
		} else {
			rects[i] = Rect{X: dims.X, Y: satInt16(pos), W: dims.W, H: satUint16(l)}
		}
		pos += l + int(gap)
	}
	return rects
}
