package entities

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrShopNotFound     = errors.New("shop not found")
	ErrPartnerNotFound  = errors.New("delivery partner not found")
	ErrDeliveryNotFound = errors.New("delivery not found")
	ErrProductNotFound  = errors.New("product not found")

	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrPartnerNotVerified = errors.New("delivery partner is not verified")
	ErrEmptyOrder         = errors.New("order has no valid items")
)
