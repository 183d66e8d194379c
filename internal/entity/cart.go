package domain

import "errors"

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrItemNotFound    = errors.New("item not in cart")
)

type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartState is a visitor's raw cart: product id -> quantity, kept in insertion order.
// Every stored quantity is >= 1.
type CartState struct {
	Lines []CartLine `json:"lines"`
}

func (c *CartState) index(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges qty into an existing line or appends a new one.
func (c *CartState) Add(productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if i := c.index(productID); i >= 0 {
		c.Lines[i].Quantity += qty
		return nil
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: qty})
	return nil
}

func (c *CartState) Increment(productID string) error {
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Lines[i].Quantity++
	return nil
}

// Decrement never removes a line; the quantity floors at 1.
func (c *CartState) Decrement(productID string) error {
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	if c.Lines[i].Quantity > 1 {
		c.Lines[i].Quantity--
	}
	return nil
}

func (c *CartState) Delete(productID string) error {
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

func (c CartState) Quantity(productID string) (int, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i].Quantity, true
	}
	return 0, false
}

// Count is the number of units across all lines.
func (c CartState) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c CartState) IsEmpty() bool { return len(c.Lines) == 0 }

// Clone returns a deep copy safe to mutate independently.
func (c CartState) Clone() CartState {
	out := CartState{Lines: make([]CartLine, len(c.Lines))}
	copy(out.Lines, c.Lines)
	return out
}

// Subtract takes other's quantities out of c and drops lines that reach zero.
// Lines added to c after other was read are left alone.
func (c *CartState) Subtract(other CartState) {
	for _, o := range other.Lines {
		i := c.index(o.ProductID)
		if i < 0 {
			continue
		}
		c.Lines[i].Quantity -= o.Quantity
		if c.Lines[i].Quantity < 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
	}
}

// Merge adds other's quantities back into c, the inverse of Subtract.
func (c *CartState) Merge(other CartState) {
	for _, o := range other.Lines {
		_ = c.Add(o.ProductID, o.Quantity)
	}
}
