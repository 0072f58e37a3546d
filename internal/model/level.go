package model

// Price is a level value that may not be known yet.
type Price struct {
	Value float64
	Valid bool
}

// Known wraps a value as a set Price.
func Known(v float64) Price { return Price{Value: v, Valid: true} }

// Level is one published reference price.
type Level struct {
	Tag         string  `json:"tag"`
	Price       float64 `json:"price"`
	AnchorIndex int     `json:"anchor_index"`
	Label       string  `json:"label"`
}

// SessionSnapshot is the frozen range of the last closed session window.
type SessionSnapshot struct {
	Session     string
	Tag         string
	Open        float64
	High        float64
	Low         float64
	AnchorIndex int
	// ClosedIndex is the primary index of the first bar after the window.
	ClosedIndex int
}
