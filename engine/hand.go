package engine

// Hand is an ordered list of cards; index 0 is the most recently drawn.
type Hand []*Card

// FindOrder returns the card with the given order, or nil.
func (h Hand) FindOrder(order int) *Card {
	for _, c := range h {
		if c.Order == order {
			return c
		}
	}
	return nil
}

// IndexOf returns the slot of the card with the given order, or -1.
func (h Hand) IndexOf(order int) int {
	for i, c := range h {
		if c.Order == order {
			return i
		}
	}
	return -1
}

// RemoveOrder removes and returns the card with the given order.
func (h *Hand) RemoveOrder(order int) *Card {
	i := h.IndexOf(order)
	if i < 0 {
		return nil
	}
	c := (*h)[i]
	*h = append((*h)[:i:i], (*h)[i+1:]...)
	return c
}

// ChopIndex returns the slot of the oldest unprotected card, or -1 when the
// hand is locked.
func (h Hand) ChopIndex() int {
	for i := len(h) - 1; i >= 0; i-- {
		if !h[i].Saved() {
			return i
		}
	}
	return -1
}

// Chop returns the chop card, or nil when the hand is locked.
func (h Hand) Chop() *Card {
	if i := h.ChopIndex(); i >= 0 {
		return h[i]
	}
	return nil
}

// FindCards returns the cards matching id under opts.
func (h Hand) FindCards(id Identity, opts MatchOptions) []*Card {
	var out []*Card
	for _, c := range h {
		if c.Matches(id, opts) {
			out = append(out, c)
		}
	}
	return out
}

// Orders lists the card orders in slot order.
func (h Hand) Orders() []int {
	out := make([]int, len(h))
	for i, c := range h {
		out[i] = c.Order
	}
	return out
}

// Clone deep-copies every card.
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	for i, c := range h {
		out[i] = c.Clone()
	}
	return out
}
