package entity

import (
	"github.com/google/uuid"
)

// ProductSnapshot is a point-in-time copy of a catalog product, taken at the
// moment a line is added. Stock here can go stale relative to the catalog.
type ProductSnapshot struct {
	ProductID int64   `json:"productoId" bson:"producto_id"`
	Name      string  `json:"nombre" bson:"nombre"`
	Image     string  `json:"imagen,omitempty" bson:"imagen,omitempty"`
	Stock     int     `json:"stock" bson:"stock"`
	BasePrice float64 `json:"precioBase" bson:"precio_base"`
}

// VariantSnapshot captures the chosen variant. A nil VariantID means "no
// distinct variant, base product pricing". Price is authoritative for the
// line regardless of later catalog price changes.
type VariantSnapshot struct {
	VariantID *int64   `json:"varianteId"`
	Name      string   `json:"nombre"`
	Price     *float64 `json:"precio"`
}

// UnitPrice returns the locked-in price of the variant, or 0 when the
// snapshot carries no price.
func (v VariantSnapshot) UnitPrice() float64 {
	if v.Price == nil {
		return 0
	}
	return *v.Price
}

// Customization is free-form personalization attached to a line.
type Customization struct {
	Text     string  `json:"texto"`
	File     *string `json:"archivo"`
	FileName *string `json:"nombreArchivo"`
}

// CartLine is one cart entry: a product variant at a quantity, with optional
// customization. ID is opaque and assigned at creation; it is never derived
// from product or variant, so adding the same variant twice yields two lines.
type CartLine struct {
	ID            string          `json:"id"`
	Product       ProductSnapshot `json:"producto"`
	Variant       VariantSnapshot `json:"variante"`
	Customization *Customization  `json:"personalizacion,omitempty"`
	Quantity      int             `json:"cantidad"`
}

func NewCartLine(product ProductSnapshot, variant VariantSnapshot, customization *Customization) CartLine {
	return CartLine{
		ID:            uuid.NewString(),
		Product:       product,
		Variant:       variant,
		Customization: customization,
		Quantity:      1,
	}
}

// Cart is an ordered sequence of lines; insertion order is preserved for
// display and checkout. The zero value is a valid empty cart.
//
// Cart does no stock validation at all. Stock-ceiling enforcement belongs to
// the caller, which has access to live catalog data; see
// QuantityOfProduct.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c *Cart) Append(line CartLine) {
	c.Lines = append(c.Lines, line)
}

// Remove deletes the line with the given ID. Removing an unknown ID is a
// no-op, not an error.
func (c *Cart) Remove(lineID string) {
	for i, line := range c.Lines {
		if line.ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the matching line's quantity verbatim. No clamping is
// performed; the caller's quantity stepper owns the bounds. Unknown IDs are
// ignored.
func (c *Cart) SetQuantity(lineID string, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total sums unit price times quantity over all lines. Lines whose variant
// snapshot has no price contribute 0.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Variant.UnitPrice() * float64(line.Quantity)
	}
	return total
}

// TotalItems sums quantities over all lines. A line with an absent quantity
// counts as 1.
func (c *Cart) TotalItems() int {
	var count int
	for _, line := range c.Lines {
		if line.Quantity == 0 {
			count++
			continue
		}
		count += line.Quantity
	}
	return count
}

// QuantityOfProduct sums quantities across all lines whose product snapshot
// matches the given ID. Callers subtract this from live stock to compute how
// many units may still be added.
func (c *Cart) QuantityOfProduct(productID int64) int {
	var count int
	for _, line := range c.Lines {
		if line.Product.ProductID == productID {
			count += line.Quantity
		}
	}
	return count
}
