package model

// Grain represents the grain direction constraint for a tile.
type Grain int

const (
	GrainNone       Grain = iota // No grain constraint, can rotate freely
	GrainHorizontal              // Grain runs along the width
	GrainVertical                // Grain runs along the height
)

func (g Grain) String() string {
	switch g {
	case GrainHorizontal:
		return "Horizontal"
	case GrainVertical:
		return "Vertical"
	default:
		return "None"
	}
}

// Tile is a single required piece at scaled integer dimensions. Panel
// entries with count > 1 are expanded into one Tile per unit, each with
// its own ID, before optimization starts.
type Tile struct {
	ID           int    `json:"id"`
	RequestIndex int    `json:"request_index"` // Index of the originating panel entry
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Material     string `json:"material"`
	Label        string `json:"label"`
	Grain        Grain  `json:"grain"`
}

func (t Tile) Area() int {
	return t.Width * t.Height
}

func (t Tile) IsSquare() bool {
	return t.Width == t.Height
}

// Rotated returns the tile with width and height swapped.
func (t Tile) Rotated() Tile {
	t.Width, t.Height = t.Height, t.Width
	return t
}

// CanRotate reports whether the 90-degree orientation may be tried for
// this tile. Square tiles gain nothing from rotation, and grained tiles
// are locked to their requested orientation when grain is considered.
func (t Tile) CanRotate(considerGrain bool) bool {
	if t.IsSquare() {
		return false
	}
	if considerGrain && t.Grain != GrainNone {
		return false
	}
	return true
}

// StockUnit is one physical stock sheet available to a run. Stock entries
// with count > 1 expand into repeated units sharing a TypeIndex.
type StockUnit struct {
	TypeIndex int    `json:"type_index"` // Identity of the distinct stock size/material
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Material  string `json:"material"`
	Label     string `json:"label"`
}

func (s StockUnit) Area() int {
	return s.Width * s.Height
}

func (s StockUnit) Rect() Rectangle {
	return NewRectangle(s.Width, s.Height)
}

// FitsTile reports whether the tile fits on this stock in either
// permitted orientation.
func (s StockUnit) FitsTile(t Tile, considerGrain bool) bool {
	if t.Width <= s.Width && t.Height <= s.Height {
		return true
	}
	if t.CanRotate(considerGrain) && t.Height <= s.Width && t.Width <= s.Height {
		return true
	}
	return false
}
