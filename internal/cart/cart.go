package cart

import "encoding/json"

// Line is one product in the cart. Name, UnitPrice and ImageURL are a snapshot taken
// when the product was first added.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	ImageURL  string `json:"imageUrl"`
}

// Total is quantity times snapshot unit price
func (l Line) Total() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// Cart is an immutable ordered set of lines keyed by product id. Every operation
// returns a new Cart and leaves the receiver untouched.
type Cart struct {
	lines []Line
}

// New builds a cart by adding lines in order
func New(lines ...Line) Cart {
	var c Cart
	for _, l := range lines {
		c = c.Add(l)
	}
	return c
}

// Lines returns a copy of the lines in insertion order
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len is the number of distinct products
func (c Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Find returns the line for productID
func (c Cart) Find(productID string) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Add merges item into the cart. An existing line only has its quantity changed; the
// first snapshot of name, price and image is kept. A merge that leaves the quantity at
// zero or below removes the line, and a new line with a non-positive quantity is ignored.
func (c Cart) Add(item Line) Cart {
	if item.UnitPrice < 0 {
		item.UnitPrice = 0
	}

	i := c.index(item.ProductID)
	if i < 0 {
		if item.Quantity < 1 {
			return c
		}
		lines := make([]Line, len(c.lines), len(c.lines)+1)
		copy(lines, c.lines)
		return Cart{lines: append(lines, item)}
	}

	return c.SetQuantity(item.ProductID, c.lines[i].Quantity+item.Quantity)
}

// Remove drops the line for productID. Removing an absent product is a no-op.
func (c Cart) Remove(productID string) Cart {
	i := c.index(productID)
	if i < 0 {
		return c
	}

	lines := make([]Line, 0, len(c.lines)-1)
	lines = append(lines, c.lines[:i]...)
	lines = append(lines, c.lines[i+1:]...)
	return Cart{lines: lines}
}

// SetQuantity replaces the quantity of productID. A quantity of zero or below removes the line.
func (c Cart) SetQuantity(productID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(productID)
	}

	i := c.index(productID)
	if i < 0 {
		return c
	}

	lines := c.Lines()
	updated := lines[i]
	updated.Quantity = quantity
	lines[i] = updated
	return Cart{lines: lines}
}

// Clear returns an empty cart
func (c Cart) Clear() Cart {
	return Cart{}
}

// ItemCount is the sum of all quantities
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of quantity times unit price over all lines
func (c Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Total()
	}
	return total
}

// MarshalJSON renders the lines together with the derived totals
func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines     []Line `json:"lines"`
		ItemCount int    `json:"itemCount"`
		Subtotal  int64  `json:"subtotal"`
	}{
		Lines:     c.Lines(),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
	})
}

func (c Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
