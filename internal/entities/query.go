package entities

// OrderQuery scopes an order listing. Zero-valued fields mean "no
// filter"; role scoping is applied by the service before it reaches the
// repository.
type OrderQuery struct {
	CustomerID string
	ShopID     string
	Status     OrderStatus
	Limit      uint64
	Offset     uint64
}

// PartnerQuery scopes an administrative partner listing.
type PartnerQuery struct {
	City     string
	Verified *bool
	Limit    uint64
	Offset   uint64
}
