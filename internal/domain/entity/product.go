package entity

// Product is a live catalog record as served by the catalog service. Stock
// here is authoritative at fetch time; snapshots taken from it go stale.
type Product struct {
	ProductID int64            `json:"productoId"`
	Name      string           `json:"nombre"`
	Image     string           `json:"imagen"`
	Stock     int              `json:"stock"`
	BasePrice float64          `json:"precioBase"`
	Variants  []ProductVariant `json:"variantes"`
}

type ProductVariant struct {
	VariantID int64   `json:"varianteId"`
	Name      string  `json:"nombre"`
	Price     float64 `json:"precio"`
}

// Snapshot freezes the product for embedding into a cart line.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductID: p.ProductID,
		Name:      p.Name,
		Image:     p.Image,
		Stock:     p.Stock,
		BasePrice: p.BasePrice,
	}
}

// Variant looks up a variant by ID.
func (p *Product) Variant(variantID int64) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.VariantID == variantID {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// VariantSnapshot freezes the given variant for a cart line. A nil variantID
// selects base product pricing.
func (p *Product) VariantSnapshot(variantID *int64) (VariantSnapshot, bool) {
	if variantID == nil {
		price := p.BasePrice
		return VariantSnapshot{VariantID: nil, Name: p.Name, Price: &price}, true
	}
	v, ok := p.Variant(*variantID)
	if !ok {
		return VariantSnapshot{}, false
	}
	id := v.VariantID
	price := v.Price
	return VariantSnapshot{VariantID: &id, Name: v.Name, Price: &price}, true
}
