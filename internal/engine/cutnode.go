// Package engine implements the guillotine cut-tree model and the
// beam-search placement algorithm that packs tiles onto stock sheets.
package engine

import (
	"strconv"
	"strings"

	"github.com/piwi3910/CutFlow/internal/model"
)

// CutNode is one node of a guillotine subdivision tree. A node either is
// a leaf (no children) or carries exactly two children produced by a
// single straight cut. A leaf with final=true holds a placed tile and is
// never subdivided again.
type CutNode struct {
	id      int
	tileID  int // External tile id; -1 while the leaf is open
	rect    model.Rectangle
	final   bool
	rotated bool
	child1  *CutNode
	child2  *CutNode
}

func newCutNode(id int, rect model.Rectangle) *CutNode {
	return &CutNode{id: id, tileID: -1, rect: rect}
}

func (n *CutNode) ID() int               { return n.id }
func (n *CutNode) TileID() int           { return n.tileID }
func (n *CutNode) Rect() model.Rectangle { return n.rect }
func (n *CutNode) IsFinal() bool         { return n.final }
func (n *CutNode) IsRotated() bool       { return n.rotated }
func (n *CutNode) Children() (*CutNode, *CutNode) {
	return n.child1, n.child2
}

// clone deep-copies the subtree. Trees are never shared mutably between
// candidates; divergence always starts from a clone.
func (n *CutNode) clone() *CutNode {
	cp := *n
	if n.child1 != nil {
		cp.child1 = n.child1.clone()
	}
	if n.child2 != nil {
		cp.child2 = n.child2.clone()
	}
	return &cp
}

// findByID locates a descendant (or the node itself) by id.
func (n *CutNode) findByID(id int) *CutNode {
	if n.id == id {
		return n
	}
	if n.child1 != nil {
		if found := n.child1.findByID(id); found != nil {
			return found
		}
	}
	if n.child2 != nil {
		if found := n.child2.findByID(id); found != nil {
			return found
		}
	}
	return nil
}

// markFinal converts an open leaf into a placed-tile leaf. A node that
// already has children cannot hold a tile.
func (n *CutNode) markFinal(tileID int, rotated bool) bool {
	if n.child1 != nil || n.child2 != nil || n.final {
		return false
	}
	n.tileID = tileID
	n.final = true
	n.rotated = rotated
	return true
}

// collectLeaves appends every open leaf whose width and height are both at
// least the requested minimums. Finalized leaves and subtrees too small to
// contain a fitting leaf are skipped.
func (n *CutNode) collectLeaves(minW, minH int, out []*CutNode) []*CutNode {
	if n.final || n.rect.Width() < minW || n.rect.Height() < minH {
		return out
	}
	if n.child1 == nil && n.child2 == nil {
		return append(out, n)
	}
	if n.child1 != nil {
		out = n.child1.collectLeaves(minW, minH, out)
	}
	if n.child2 != nil {
		out = n.child2.collectLeaves(minW, minH, out)
	}
	return out
}

// usedArea sums the area of all finalized leaves in the subtree.
func (n *CutNode) usedArea() int {
	if n.final {
		return n.rect.Area()
	}
	total := 0
	if n.child1 != nil {
		total += n.child1.usedArea()
	}
	if n.child2 != nil {
		total += n.child2.usedArea()
	}
	return total
}

// countFinal counts placed tiles in the subtree.
func (n *CutNode) countFinal() int {
	if n.final {
		return 1
	}
	total := 0
	if n.child1 != nil {
		total += n.child1.countFinal()
	}
	if n.child2 != nil {
		total += n.child2.countFinal()
	}
	return total
}

// openLeaves returns every non-final leaf regardless of size.
func (n *CutNode) openLeaves(out []*CutNode) []*CutNode {
	return n.collectLeaves(0, 0, out)
}

// collectFinal appends every placed-tile leaf in traversal order.
func (n *CutNode) collectFinal(out []*CutNode) []*CutNode {
	if n.final {
		return append(out, n)
	}
	if n.child1 != nil {
		out = n.child1.collectFinal(out)
	}
	if n.child2 != nil {
		out = n.child2.collectFinal(out)
	}
	return out
}

// biggestOpenArea returns the area of the largest open leaf, used as a
// comparator key: a consolidated leftover beats fragmented scraps.
func (n *CutNode) biggestOpenArea() int {
	if n.final {
		return 0
	}
	if n.child1 == nil && n.child2 == nil {
		return n.rect.Area()
	}
	best := 0
	if n.child1 != nil {
		if a := n.child1.biggestOpenArea(); a > best {
			best = a
		}
	}
	if n.child2 != nil {
		if a := n.child2.biggestOpenArea(); a > best {
			best = a
		}
	}
	return best
}

func (n *CutNode) depth() int {
	d1, d2 := 0, 0
	if n.child1 != nil {
		d1 = n.child1.depth()
	}
	if n.child2 != nil {
		d2 = n.child2.depth()
	}
	if d2 > d1 {
		d1 = d2
	}
	return d1 + 1
}

// distinctTileSizes counts the distinct width x height pairs among placed
// tiles. Layouts that repeat few sizes are simpler to cut.
func (n *CutNode) distinctTileSizes() int {
	seen := make(map[[2]int]struct{})
	n.collectTileSizes(seen)
	return len(seen)
}

func (n *CutNode) collectTileSizes(seen map[[2]int]struct{}) {
	if n.final {
		seen[[2]int{n.rect.Width(), n.rect.Height()}] = struct{}{}
		return
	}
	if n.child1 != nil {
		n.child1.collectTileSizes(seen)
	}
	if n.child2 != nil {
		n.child2.collectTileSizes(seen)
	}
}

// writeSignature emits a structural identifier for the subtree: rectangle
// coordinates plus finality in preorder. Two trees with equal signatures
// are geometrically interchangeable.
func (n *CutNode) writeSignature(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(strconv.Itoa(n.rect.X1))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(n.rect.Y1))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(n.rect.X2))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(n.rect.Y2))
	if n.final {
		sb.WriteByte('F')
	}
	if n.child1 != nil {
		n.child1.writeSignature(sb)
	}
	if n.child2 != nil {
		n.child2.writeSignature(sb)
	}
	sb.WriteByte(')')
}

func (n *CutNode) signature() string {
	var sb strings.Builder
	n.writeSignature(&sb)
	return sb.String()
}
