package entities

// Shop is the slice of the vendor catalog this service needs: ownership
// for role-scoped reads and the owner's user id for notifications.
type Shop struct {
	ID      string
	OwnerID string
	Name    string
}

// Product is a catalog snapshot used to price order items at creation
// time. Prices are in paise; DiscountedPrice is nil when no discount
// applies.
type Product struct {
	ID              string
	Name            string
	Price           int64
	DiscountedPrice *int64
}

// EffectivePrice returns the price an item is charged at right now.
func (p Product) EffectivePrice() int64 {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.Price
}
