package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/avolkov/marketplace-order-service/internal/auth"
	"github.com/avolkov/marketplace-order-service/internal/config"
	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/pkg/trm"
)

var testTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type fakeTxManager struct {
	err error
}

func (f fakeTxManager) BeginTx(ctx context.Context) (context.Context, trm.Transaction, error) {
	return ctx, nopTx{}, f.err
}

func (f fakeTxManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return callback(ctx)
}

type fakeOrderRepo struct {
	orders     map[string]entities.Order
	listResult []entities.Order
	listQuery  entities.OrderQuery

	saved      []entities.Order
	savedItems map[string][]entities.OrderItem
	statuses   map[string]entities.OrderStatus
	payments   map[string]entities.PaymentStatus

	saveErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:     make(map[string]entities.Order),
		savedItems: make(map[string][]entities.OrderItem),
		statuses:   make(map[string]entities.OrderStatus),
		payments:   make(map[string]entities.PaymentStatus),
	}
}

func (f *fakeOrderRepo) SaveOrder(_ context.Context, o entities.Order) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, o)
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) SaveItems(_ context.Context, orderID string, items []entities.OrderItem) error {
	f.savedItems[orderID] = items
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, orderID string) (entities.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, q entities.OrderQuery) ([]entities.Order, error) {
	f.listQuery = q
	return f.listResult, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, orderID string, status entities.OrderStatus) error {
	if _, ok := f.orders[orderID]; !ok {
		return entities.ErrOrderNotFound
	}
	f.statuses[orderID] = status
	return nil
}

func (f *fakeOrderRepo) SetPaymentStatus(_ context.Context, orderID string, status entities.PaymentStatus) error {
	if _, ok := f.orders[orderID]; !ok {
		return entities.ErrOrderNotFound
	}
	f.payments[orderID] = status
	return nil
}

type fakeDeliveryRepo struct {
	deliveries       map[string]entities.Delivery
	partnersByID     map[string]entities.DeliveryPartner
	partnersByUserID map[string]entities.DeliveryPartner
	partnerWork      []entities.PartnerDelivery

	savedDeliveries []entities.Delivery
	pickupTimes     map[string]time.Time
	deliveryTimes   map[string]time.Time
	onlineStates    map[string]bool
	verifiedStates  map[string]bool
	partnersQuery   entities.PartnerQuery
	partnersResult  []entities.DeliveryPartner
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{
		deliveries:       make(map[string]entities.Delivery),
		partnersByID:     make(map[string]entities.DeliveryPartner),
		partnersByUserID: make(map[string]entities.DeliveryPartner),
		pickupTimes:      make(map[string]time.Time),
		deliveryTimes:    make(map[string]time.Time),
		onlineStates:     make(map[string]bool),
		verifiedStates:   make(map[string]bool),
	}
}

func (f *fakeDeliveryRepo) addPartner(p entities.DeliveryPartner) {
	f.partnersByID[p.ID] = p
	f.partnersByUserID[p.UserID] = p
}

func (f *fakeDeliveryRepo) SaveDelivery(_ context.Context, d entities.Delivery) error {
	f.savedDeliveries = append(f.savedDeliveries, d)
	f.deliveries[d.OrderID] = d
	return nil
}

func (f *fakeDeliveryRepo) GetDeliveryByOrderID(_ context.Context, orderID string) (entities.Delivery, error) {
	d, ok := f.deliveries[orderID]
	if !ok {
		return entities.Delivery{}, entities.ErrDeliveryNotFound
	}
	return d, nil
}

func (f *fakeDeliveryRepo) SetPickupTime(_ context.Context, orderID string, t time.Time) error {
	f.pickupTimes[orderID] = t
	return nil
}

func (f *fakeDeliveryRepo) SetDeliveryTime(_ context.Context, orderID string, t time.Time) error {
	f.deliveryTimes[orderID] = t
	return nil
}

func (f *fakeDeliveryRepo) ListByPartner(_ context.Context, _ string) ([]entities.PartnerDelivery, error) {
	return f.partnerWork, nil
}

func (f *fakeDeliveryRepo) GetPartnerByID(_ context.Context, partnerID string) (entities.DeliveryPartner, error) {
	p, ok := f.partnersByID[partnerID]
	if !ok {
		return entities.DeliveryPartner{}, entities.ErrPartnerNotFound
	}
	return p, nil
}

func (f *fakeDeliveryRepo) GetPartnerByUserID(_ context.Context, userID string) (entities.DeliveryPartner, error) {
	p, ok := f.partnersByUserID[userID]
	if !ok {
		return entities.DeliveryPartner{}, entities.ErrPartnerNotFound
	}
	return p, nil
}

func (f *fakeDeliveryRepo) SetPartnerOnline(_ context.Context, partnerID string, online bool) error {
	if _, ok := f.partnersByID[partnerID]; !ok {
		return entities.ErrPartnerNotFound
	}
	f.onlineStates[partnerID] = online
	return nil
}

func (f *fakeDeliveryRepo) SetPartnerVerified(_ context.Context, partnerID string, verified bool) error {
	if _, ok := f.partnersByID[partnerID]; !ok {
		return entities.ErrPartnerNotFound
	}
	f.verifiedStates[partnerID] = verified
	return nil
}

func (f *fakeDeliveryRepo) ListPartners(_ context.Context, q entities.PartnerQuery) ([]entities.DeliveryPartner, error) {
	f.partnersQuery = q
	return f.partnersResult, nil
}

type fakeShopRepo struct {
	shopsByID    map[string]entities.Shop
	shopsByOwner map[string]entities.Shop
}

func newFakeShopRepo(shops ...entities.Shop) *fakeShopRepo {
	f := &fakeShopRepo{
		shopsByID:    make(map[string]entities.Shop),
		shopsByOwner: make(map[string]entities.Shop),
	}
	for _, s := range shops {
		f.shopsByID[s.ID] = s
		f.shopsByOwner[s.OwnerID] = s
	}
	return f
}

func (f *fakeShopRepo) GetShopByID(_ context.Context, shopID string) (entities.Shop, error) {
	s, ok := f.shopsByID[shopID]
	if !ok {
		return entities.Shop{}, entities.ErrShopNotFound
	}
	return s, nil
}

func (f *fakeShopRepo) GetShopByOwner(_ context.Context, ownerID string) (entities.Shop, error) {
	s, ok := f.shopsByOwner[ownerID]
	if !ok {
		return entities.Shop{}, entities.ErrShopNotFound
	}
	return s, nil
}

type fakeCatalog struct {
	products map[string]entities.Product
}

func newFakeCatalog(products ...entities.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[string]entities.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) GetProduct(_ context.Context, productID string) (entities.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return entities.Product{}, entities.ErrProductNotFound
	}
	return p, nil
}

type emitted struct {
	UserID string
	Event  string
	Payload any
}

type fakeDispatcher struct {
	emitted []emitted
	panics  bool
}

func (f *fakeDispatcher) EmitToUser(userID string, event string, payload any) {
	if f.panics {
		panic("dispatcher down")
	}
	f.emitted = append(f.emitted, emitted{UserID: userID, Event: event, Payload: payload})
}

func (f *fakeDispatcher) eventsFor(userID string) []string {
	var events []string
	for _, e := range f.emitted {
		if e.UserID == userID {
			events = append(events, e.Event)
		}
	}
	return events
}

type fakePublisher struct {
	events []entities.OrderEvent
	err    error
}

func (f *fakePublisher) PublishOrderEvent(_ context.Context, ev entities.OrderEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type orderFixture struct {
	svc        *OrderService
	orders     *fakeOrderRepo
	deliveries *fakeDeliveryRepo
	shops      *fakeShopRepo
	catalog    *fakeCatalog
	dispatcher *fakeDispatcher
	publisher  *fakePublisher
}

var testPricing = config.Pricing{DeliveryFee: 5000, TaxRateBPS: 500}

func newOrderFixture(shops *fakeShopRepo, catalog *fakeCatalog) *orderFixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &orderFixture{
		orders:     newFakeOrderRepo(),
		deliveries: newFakeDeliveryRepo(),
		shops:      shops,
		catalog:    catalog,
		dispatcher: &fakeDispatcher{},
		publisher:  &fakePublisher{},
	}
	f.svc = NewOrderService(
		logger, fakeTxManager{}, f.orders, f.deliveries, f.shops,
		f.catalog, f.dispatcher, f.publisher, testPricing,
	)
	f.svc.now = func() time.Time { return testTime }
	return f
}

func customerIdentity(userID string) auth.Identity {
	return auth.Identity{UserID: userID, Role: entities.RoleCustomer}
}

func vendorIdentity(userID string) auth.Identity {
	return auth.Identity{UserID: userID, Role: entities.RoleVendor}
}

func deliveryIdentity(userID string) auth.Identity {
	return auth.Identity{UserID: userID, Role: entities.RoleDelivery}
}

func adminIdentity(userID string) auth.Identity {
	return auth.Identity{UserID: userID, Role: entities.RoleAdmin}
}
