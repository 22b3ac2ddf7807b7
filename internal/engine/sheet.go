package engine

import "github.com/piwi3910/CutFlow/internal/model"

// Cut records one guillotine cut applied to a sheet. Coordinates describe
// the saw line; Horizontal cuts run along the X axis at Y1 == Y2, vertical
// cuts along the Y axis at X1 == X2. Child2ID is -1 when the kerf consumed
// the offcut side entirely and no second child exists.
type Cut struct {
	X1         int  `json:"x1"`
	Y1         int  `json:"y1"`
	X2         int  `json:"x2"`
	Y2         int  `json:"y2"`
	Horizontal bool `json:"horizontal"`
	NodeID     int  `json:"node_id"`
	Child1ID   int  `json:"child1_id"`
	Child2ID   int  `json:"child2_id"`
}

// Length returns the cut length in scaled units.
func (c Cut) Length() int {
	if c.Horizontal {
		return c.X2 - c.X1
	}
	return c.Y2 - c.Y1
}

// SheetLayout is one stock sheet's guillotine tree plus bookkeeping. A
// layout belongs to exactly one candidate; branching copies it before
// mutating.
type SheetLayout struct {
	Stock    model.StockUnit
	Material string
	Cuts     []Cut

	root   *CutNode
	nextID int
}

// NewSheetLayout opens a layout over one stock sheet with a single open
// root leaf.
func NewSheetLayout(stock model.StockUnit) *SheetLayout {
	return &SheetLayout{
		Stock:    stock,
		Material: stock.Material,
		root:     newCutNode(0, stock.Rect()),
		nextID:   1,
	}
}

func (s *SheetLayout) Root() *CutNode { return s.root }

// Copy deep-copies the layout, tree included. Node ids are preserved so a
// leaf found on the original can be located on the copy.
func (s *SheetLayout) Copy() *SheetLayout {
	cp := &SheetLayout{
		Stock:    s.Stock,
		Material: s.Material,
		root:     s.root.clone(),
		nextID:   s.nextID,
	}
	cp.Cuts = make([]Cut, len(s.Cuts))
	copy(cp.Cuts, s.Cuts)
	return cp
}

func (s *SheetLayout) UsedArea() int {
	return s.root.usedArea()
}

func (s *SheetLayout) WastedArea() int {
	return s.Stock.Area() - s.UsedArea()
}

func (s *SheetLayout) TileCount() int {
	return s.root.countFinal()
}

// CutLength sums the length of every cut on the sheet.
func (s *SheetLayout) CutLength() int {
	total := 0
	for _, c := range s.Cuts {
		total += c.Length()
	}
	return total
}

// BiggestOpenArea returns the largest still-open leaf area.
func (s *SheetLayout) BiggestOpenArea() int {
	return s.root.biggestOpenArea()
}

// PlacedTiles returns the finalized leaves in traversal order.
func (s *SheetLayout) PlacedTiles() []*CutNode {
	return s.root.collectFinal(nil)
}

// OpenLeaves returns the non-final leaves in traversal order.
func (s *SheetLayout) OpenLeaves() []*CutNode {
	return s.root.openLeaves(nil)
}

// Signature returns the structural identifier of the whole sheet.
func (s *SheetLayout) Signature() string {
	return s.root.signature()
}

// splitHorizontal carves an open leaf into a left child spanning width,
// plus a right child past the kerf when any material remains there. A
// margin the kerf swallows entirely still cuts fine; the saw line runs
// and only the left child is created (Child2ID -1 on the Cut record).
// Returns false and leaves the node untouched when the left child itself
// would lack positive area.
func (s *SheetLayout) splitHorizontal(n *CutNode, width, kerf int) bool {
	r := n.rect
	if width <= 0 || r.X1+width >= r.X2 || n.final || n.child1 != nil {
		return false
	}
	n.child1 = newCutNode(s.nextID, model.Rectangle{X1: r.X1, Y1: r.Y1, X2: r.X1 + width, Y2: r.Y2})
	s.nextID++
	cut := Cut{
		X1:         r.X1 + width,
		Y1:         r.Y1,
		X2:         r.X1 + width,
		Y2:         r.Y2,
		Horizontal: false,
		NodeID:     n.id,
		Child1ID:   n.child1.id,
		Child2ID:   -1,
	}
	if r.X1+width+kerf < r.X2 {
		n.child2 = newCutNode(s.nextID, model.Rectangle{X1: r.X1 + width + kerf, Y1: r.Y1, X2: r.X2, Y2: r.Y2})
		s.nextID++
		cut.Child2ID = n.child2.id
	}
	s.Cuts = append(s.Cuts, cut)
	return true
}

// splitVertical is the transpose of splitHorizontal: a bottom child
// spanning height, separated by a horizontal cut from a top child that
// only exists when material remains past the kerf.
func (s *SheetLayout) splitVertical(n *CutNode, height, kerf int) bool {
	r := n.rect
	if height <= 0 || r.Y1+height >= r.Y2 || n.final || n.child1 != nil {
		return false
	}
	n.child1 = newCutNode(s.nextID, model.Rectangle{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y1 + height})
	s.nextID++
	cut := Cut{
		X1:         r.X1,
		Y1:         r.Y1 + height,
		X2:         r.X2,
		Y2:         r.Y1 + height,
		Horizontal: true,
		NodeID:     n.id,
		Child1ID:   n.child1.id,
		Child2ID:   -1,
	}
	if r.Y1+height+kerf < r.Y2 {
		n.child2 = newCutNode(s.nextID, model.Rectangle{X1: r.X1, Y1: r.Y1 + height + kerf, X2: r.X2, Y2: r.Y2})
		s.nextID++
		cut.Child2ID = n.child2.id
	}
	s.Cuts = append(s.Cuts, cut)
	return true
}

// marginAllowed applies the trim rule: a leftover margin must be exactly
// zero or at least the configured minimum trim dimension. Margins in
// between would produce unusable slivers. The second return flags the
// rejection for diagnostics.
func marginAllowed(margin, minTrim int) (ok, trimHit bool) {
	if margin == 0 || margin >= minTrim {
		return true, false
	}
	return false, true
}

// PlaceTile finalizes the tile (width x height after any rotation) in the
// given open leaf of this layout, cutting the leaf down as dictated by the
// direction bias. The layout must be a private copy; it is mutated in
// place. Returns false when no valid placement exists here, with trimHit
// set when the min-trim rule was the reason.
func (s *SheetLayout) PlaceTile(leafID int, tileID, width, height int, rotated bool, kerf, minTrim int, horizontalFirst bool) (ok, trimHit bool) {
	n := s.root.findByID(leafID)
	if n == nil || n.final || n.child1 != nil {
		return false, false
	}
	marginW := n.rect.Width() - width
	marginH := n.rect.Height() - height
	if marginW < 0 || marginH < 0 {
		return false, false
	}
	okW, hitW := marginAllowed(marginW, minTrim)
	okH, hitH := marginAllowed(marginH, minTrim)
	if !okW || !okH {
		return false, hitW || hitH
	}

	target := n
	if horizontalFirst {
		if marginW > 0 {
			if !s.splitHorizontal(target, width, kerf) {
				return false, false
			}
			target = target.child1
		}
		if marginH > 0 {
			if !s.splitVertical(target, height, kerf) {
				return false, false
			}
			target = target.child1
		}
	} else {
		if marginH > 0 {
			if !s.splitVertical(target, height, kerf) {
				return false, false
			}
			target = target.child1
		}
		if marginW > 0 {
			if !s.splitHorizontal(target, width, kerf) {
				return false, false
			}
			target = target.child1
		}
	}
	if !target.markFinal(tileID, rotated) {
		return false, false
	}
	return true, false
}
