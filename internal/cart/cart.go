// Package cart holds a shopper's pending items between requests.
package cart

import "evspare/internal/models"

// Item is one cart line. UnitPrice is the catalog price when the line was added and
// is only used for display totals; orders are always priced from the catalog.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Image     string  `json:"image,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Cart is an ordered list of items with quantity >= 1.
type Cart struct {
	Lines []Item `json:"items"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Lines: []Item{}}
}

// Add puts one unit of product in the cart.
func (c *Cart) Add(product *models.Product) {
	c.AddQuantity(product, 1)
}

// AddQuantity adds qty units of product, merging with an existing line.
// Non-positive quantities are ignored.
func (c *Cart) AddQuantity(product *models.Product, qty int) {
	if qty <= 0 {
		return
	}
	if i := c.index(product.ID); i >= 0 {
		c.Lines[i].Quantity += qty
		return
	}
	c.Lines = append(c.Lines, Item{
		ProductID: product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
		Image:     product.Image,
		UnitPrice: product.Price,
		Quantity:  qty,
	})
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
// It reports whether the product was in the cart.
func (c *Cart) UpdateQuantity(productID string, qty int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.removeAt(i)
		return true
	}
	c.Lines[i].Quantity = qty
	return true
}

// Remove drops a line. It reports whether the product was in the cart.
func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = []Item{}
}

// Total is the sum of unit price times quantity, before tax.
func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.Lines {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Lines {
		n += it.Quantity
	}
	return n
}

// Items returns a copy of the lines.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.Lines))
	copy(out, c.Lines)
	return out
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) index(productID string) int {
	for i, it := range c.Lines {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}
