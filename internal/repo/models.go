package repo

import (
	"database/sql"
	"time"

	"github.com/avolkov/marketplace-order-service/internal/entities"
)

type Order struct {
	ID            string    `db:"id"`
	OrderNumber   string    `db:"order_number"`
	CustomerID    string    `db:"customer_id"`
	ShopID        string    `db:"shop_id"`
	AddressID     string    `db:"address_id"`
	Subtotal      int64     `db:"subtotal"`
	DeliveryFee   int64     `db:"delivery_fee"`
	Tax           int64     `db:"tax"`
	Discount      int64     `db:"discount"`
	Total         int64     `db:"total"`
	PaymentMethod string    `db:"payment_method"`
	PaymentStatus string    `db:"payment_status"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

type OrderItem struct {
	OrderID   string `db:"order_id"`
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Quantity  int    `db:"quantity"`
	Price     int64  `db:"price"`
}

type Delivery struct {
	ID           string       `db:"id"`
	OrderID      string       `db:"order_id"`
	PartnerID    string       `db:"partner_id"`
	Fee          int64        `db:"fee"`
	AssignedAt   time.Time    `db:"assigned_at"`
	PickupTime   sql.NullTime `db:"pickup_time"`
	DeliveryTime sql.NullTime `db:"delivery_time"`
}

type DeliveryPartner struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Vehicle    string    `db:"vehicle"`
	City       string    `db:"city"`
	IsVerified bool      `db:"is_verified"`
	IsOnline   bool      `db:"is_online"`
	CreatedAt  time.Time `db:"created_at"`
}

type Shop struct {
	ID      string `db:"id"`
	OwnerID string `db:"owner_id"`
	Name    string `db:"name"`
}

type Product struct {
	ID              string        `db:"id"`
	Name            string        `db:"name"`
	Price           int64         `db:"price"`
	DiscountedPrice sql.NullInt64 `db:"discounted_price"`
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		ShopID:        o.ShopID,
		AddressID:     o.AddressID,
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Tax:           o.Tax,
		Discount:      o.Discount,
		Total:         o.Total,
		PaymentMethod: entities.PaymentMethod(o.PaymentMethod),
		PaymentStatus: entities.PaymentStatus(o.PaymentStatus),
		Status:        entities.OrderStatus(o.Status),
		CreatedAt:     o.CreatedAt,
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		ProductID: i.ProductID,
		Name:      i.Name,
		Quantity:  i.Quantity,
		Price:     i.Price,
	}
}

func DeliveryToEntity(d Delivery) entities.Delivery {
	return entities.Delivery{
		ID:           d.ID,
		OrderID:      d.OrderID,
		PartnerID:    d.PartnerID,
		Fee:          d.Fee,
		AssignedAt:   d.AssignedAt,
		PickupTime:   nullTimeToPtr(d.PickupTime),
		DeliveryTime: nullTimeToPtr(d.DeliveryTime),
	}
}

func PartnerToEntity(p DeliveryPartner) entities.DeliveryPartner {
	return entities.DeliveryPartner{
		ID:         p.ID,
		UserID:     p.UserID,
		Vehicle:    p.Vehicle,
		City:       p.City,
		IsVerified: p.IsVerified,
		IsOnline:   p.IsOnline,
		CreatedAt:  p.CreatedAt,
	}
}

func ShopToEntity(s Shop) entities.Shop {
	return entities.Shop{ID: s.ID, OwnerID: s.OwnerID, Name: s.Name}
}

func ProductToEntity(p Product) entities.Product {
	product := entities.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
	}
	if p.DiscountedPrice.Valid {
		dp := p.DiscountedPrice.Int64
		product.DiscountedPrice = &dp
	}
	return product
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}
