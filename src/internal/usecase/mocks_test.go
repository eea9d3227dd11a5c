package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"repair-service/src/internal/entity"
	"repair-service/src/internal/gateway/messaging"
	"repair-service/src/internal/gateway/payment"
	"repair-service/src/internal/repository"
	"repair-service/src/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
)

// mockOrderStore keeps rows in a map behind a mutex and implements every
// guarded update with the same compare-and-set semantics as the SQL, so the
// concurrency tests exercise real contention.
type mockOrderStore struct {
	mu     sync.Mutex
	orders map[string]*entity.RepairOrder
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: map[string]*entity.RepairOrder{}}
}

func (s *mockOrderStore) put(order *entity.RepairOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *order
	s.orders[order.ID] = &copied
}

func (s *mockOrderStore) get(id string) *entity.RepairOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil
	}
	copied := *order
	return &copied
}

func (s *mockOrderStore) CreateOrder(_ context.Context, order *entity.RepairOrder) error {
	s.put(order)
	return nil
}

func (s *mockOrderStore) FindOneOrder(_ context.Context, filter entity.OrderFilter) (*entity.RepairOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if filter.OrderID != nil && order.ID != *filter.OrderID {
			continue
		}
		if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.ProviderID != nil && (order.ProviderID == nil || *order.ProviderID != *filter.ProviderID) {
			continue
		}
		copied := *order
		return &copied, nil
	}
	return nil, nil
}

func (s *mockOrderStore) FindOpenOrders(_ context.Context) ([]entity.RepairOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var open []entity.RepairOrder
	for _, order := range s.orders {
		if order.Status == entity.OrderStatusPending {
			open = append(open, *order)
		}
	}
	return open, nil
}

func (s *mockOrderStore) FindOrdersByCustomer(_ context.Context, customerID string) ([]entity.RepairOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []entity.RepairOrder
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			found = append(found, *order)
		}
	}
	return found, nil
}

func (s *mockOrderStore) FindOrdersByProvider(_ context.Context, providerID string) ([]entity.RepairOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []entity.RepairOrder
	for _, order := range s.orders {
		if order.ProviderID != nil && *order.ProviderID == providerID {
			found = append(found, *order)
		}
	}
	return found, nil
}

func (s *mockOrderStore) ClaimOrder(_ context.Context, orderID, providerID string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.Status != entity.OrderStatusPending || order.ProviderID != nil {
		return false, nil
	}
	order.Status = entity.OrderStatusClaimed
	order.ProviderID = &providerID
	deadline := expiresAt
	order.ClaimExpiresAt = &deadline
	return true, nil
}

func (s *mockOrderStore) AcceptClaim(_ context.Context, orderID, providerID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.Status != entity.OrderStatusClaimed {
		return false, nil
	}
	if order.ProviderID == nil || *order.ProviderID != providerID {
		return false, nil
	}
	if order.ClaimExpiresAt == nil || !order.ClaimExpiresAt.After(now) {
		return false, nil
	}
	order.Status = entity.OrderStatusAccepted
	order.ClaimExpiresAt = nil
	return true, nil
}

func (s *mockOrderStore) ReleaseClaim(_ context.Context, orderID, providerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.Status != entity.OrderStatusClaimed {
		return false, nil
	}
	if order.ProviderID == nil || *order.ProviderID != providerID {
		return false, nil
	}
	order.Status = entity.OrderStatusPending
	order.ProviderID = nil
	order.ClaimExpiresAt = nil
	return true, nil
}

func (s *mockOrderStore) ReleaseExpiredClaim(_ context.Context, orderID, providerID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.Status != entity.OrderStatusClaimed {
		return false, nil
	}
	if order.ProviderID == nil || *order.ProviderID != providerID {
		return false, nil
	}
	if order.ClaimExpiresAt == nil || order.ClaimExpiresAt.After(now) {
		return false, nil
	}
	order.Status = entity.OrderStatusPending
	order.ProviderID = nil
	order.ClaimExpiresAt = nil
	return true, nil
}

func (s *mockOrderStore) FindExpiredClaims(_ context.Context, now time.Time, limit int) ([]entity.RepairOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []entity.RepairOrder
	for _, order := range s.orders {
		if len(expired) >= limit {
			break
		}
		if order.Status == entity.OrderStatusClaimed &&
			order.ClaimExpiresAt != nil && !order.ClaimExpiresAt.After(now) {
			expired = append(expired, *order)
		}
	}
	return expired, nil
}

func (s *mockOrderStore) UpdateStatusForProvider(_ context.Context, orderID, providerID, from, to string) (bool, error) {
	if !repository.ValidTransition(from, to) {
		return false, repository.ErrInvalidTransition
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	if order.ProviderID == nil || *order.ProviderID != providerID {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (s *mockOrderStore) CancelOrder(_ context.Context, orderID, from, to string) (bool, error) {
	if !repository.ValidTransition(from, to) {
		return false, repository.ErrInvalidTransition
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	order.ProviderID = nil
	order.ClaimExpiresAt = nil
	return true, nil
}

func (s *mockOrderStore) UpdateItems(_ context.Context, orderID string, items []byte, totalPrice float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	if order.Status != entity.OrderStatusPending && order.Status != entity.OrderStatusClaimed {
		return false, nil
	}
	order.Items = items
	order.TotalPrice = totalPrice
	return true, nil
}

func (s *mockOrderStore) SetRating(_ context.Context, orderID, role, partyID string, rating int, review string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.Status != entity.OrderStatusCompleted {
		return false, nil
	}
	reviewedAt := now
	switch role {
	case entity.RoleCustomer:
		if order.CustomerID != partyID || order.CustomerRating != nil {
			return false, nil
		}
		order.CustomerRating = &rating
		order.CustomerReview = &review
		order.CustomerReviewedAt = &reviewedAt
	case entity.RoleProvider:
		if order.ProviderID == nil || *order.ProviderID != partyID || order.ProviderRating != nil {
			return false, nil
		}
		order.ProviderRating = &rating
		order.ProviderReview = &review
		order.ProviderReviewedAt = &reviewedAt
	default:
		return false, repository.ErrNotEligible
	}
	return true, nil
}

type mockQuoteStore struct {
	mu     sync.Mutex
	quotes map[string]*entity.Quote
}

func newMockQuoteStore() *mockQuoteStore {
	return &mockQuoteStore{quotes: map[string]*entity.Quote{}}
}

func (s *mockQuoteStore) CreateQuote(_ context.Context, quote *entity.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *quote
	s.quotes[quote.ID] = &copied
	return nil
}

func (s *mockQuoteStore) FindQuoteByID(_ context.Context, id string) (*entity.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quote, ok := s.quotes[id]
	if !ok {
		return nil, nil
	}
	copied := *quote
	return &copied, nil
}

func (s *mockQuoteStore) FindQuotesByOrder(_ context.Context, orderID string) ([]entity.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []entity.Quote
	for _, quote := range s.quotes {
		if quote.OrderID == orderID {
			found = append(found, *quote)
		}
	}
	return found, nil
}

func (s *mockQuoteStore) HasAcceptedQuote(_ context.Context, orderID, providerID, excludeQuoteID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAcceptedLocked(orderID, providerID, excludeQuoteID), nil
}

func (s *mockQuoteStore) hasAcceptedLocked(orderID, providerID, excludeQuoteID string) bool {
	for _, quote := range s.quotes {
		if quote.OrderID == orderID && quote.ProviderID == providerID &&
			quote.Status == entity.QuoteStatusAccepted && quote.ID != excludeQuoteID {
			return true
		}
	}
	return false
}

func (s *mockQuoteStore) UpdateQuoteStatus(_ context.Context, quoteID, from, to string, chargeID *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quote, ok := s.quotes[quoteID]
	if !ok || quote.Status != from {
		return false, nil
	}
	if to == entity.QuoteStatusAccepted && s.hasAcceptedLocked(quote.OrderID, quote.ProviderID, quote.ID) {
		return false, nil
	}
	quote.Status = to
	if chargeID != nil {
		quote.ChargeID = chargeID
	}
	return true, nil
}

type mockChargeStore struct {
	mu      sync.Mutex
	charges map[string]*entity.CustomCharge
}

func newMockChargeStore() *mockChargeStore {
	return &mockChargeStore{charges: map[string]*entity.CustomCharge{}}
}

func (s *mockChargeStore) CreateCharge(_ context.Context, charge *entity.CustomCharge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *charge
	s.charges[charge.ID] = &copied
	return nil
}

func (s *mockChargeStore) FindChargeByID(_ context.Context, id string) (*entity.CustomCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	charge, ok := s.charges[id]
	if !ok {
		return nil, nil
	}
	copied := *charge
	return &copied, nil
}

func (s *mockChargeStore) FindChargesByOrder(_ context.Context, orderID string) ([]entity.CustomCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []entity.CustomCharge
	for _, charge := range s.charges {
		if charge.OrderID == orderID {
			found = append(found, *charge)
		}
	}
	return found, nil
}

func (s *mockChargeStore) UpdateChargeStatus(_ context.Context, chargeID, from, to string, chargeRef *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	charge, ok := s.charges[chargeID]
	if !ok || charge.Status != from {
		return false, nil
	}
	charge.Status = to
	if chargeRef != nil {
		charge.ChargeRef = chargeRef
	}
	return true, nil
}

// mockProcessor is an idempotent in-memory payment processor: repeated
// CreateCharge calls with the same key replay the original charge.
type mockProcessor struct {
	mu          sync.Mutex
	charges     map[string]*payment.Charge
	failCreates bool
	createCalls int
}

func newMockProcessor() *mockProcessor {
	return &mockProcessor{charges: map[string]*payment.Charge{}}
}

func (p *mockProcessor) CreateCharge(_ context.Context, amount float64, currency, idempotencyKey string) (*payment.Charge, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	if p.failCreates {
		return nil, errors.New("processor unavailable")
	}
	if existing, ok := p.charges[idempotencyKey]; ok {
		copied := *existing
		return &copied, nil
	}
	charge := &payment.Charge{
		ChargeID: "ch-" + uuid.NewString(),
		Status:   "captured",
		Amount:   amount,
		Currency: currency,
		Captured: true,
	}
	p.charges[idempotencyKey] = charge
	copied := *charge
	return &copied, nil
}

func (p *mockProcessor) GetCharge(_ context.Context, idempotencyKey string) (*payment.Charge, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	charge, ok := p.charges[idempotencyKey]
	if !ok {
		return nil, nil
	}
	copied := *charge
	return &copied, nil
}

// capture a charge directly, simulating a capture whose local write was lost
func (p *mockProcessor) seedCharge(idempotencyKey string, amount float64) *payment.Charge {
	p.mu.Lock()
	defer p.mu.Unlock()
	charge := &payment.Charge{
		ChargeID: "ch-" + uuid.NewString(),
		Status:   "captured",
		Amount:   amount,
		Currency: "IDR",
		Captured: true,
	}
	p.charges[idempotencyKey] = charge
	return charge
}

type mockEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (e *mockEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(e.tasks))}, nil
}

func (e *mockEnqueuer) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

func testLogger() log.Log {
	return log.NewTestLogger()
}

// producers built over a nil kafka handle publish nothing
func testProviderProducer() *messaging.ProviderProducer {
	return messaging.NewProviderProducer(nil, testLogger())
}

func testCustomerProducer() *messaging.CustomerProducer {
	return messaging.NewCustomerProducer(nil, testLogger())
}

func seedOrder(store *mockOrderStore, status string, mutate ...func(*entity.RepairOrder)) *entity.RepairOrder {
	items, _ := entity.EncodeItems([]entity.OrderItem{
		{ServiceID: "svc-1", Name: "Brake pad replacement", UnitPrice: 150000, Quantity: 1},
	})
	order := &entity.RepairOrder{
		ID:         uuid.NewString(),
		CustomerID: "customer-1",
		Status:     status,
		Items:      items,
		TotalPrice: 150000,
		Latitude:   -6.2,
		Longitude:  106.8,
		Address:    "Jl. Sudirman No. 1",
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	for _, fn := range mutate {
		fn(order)
	}
	store.put(order)
	return order
}

func newClaimUseCaseForTest(store *mockOrderStore, enqueuer TaskEnqueuer) *ClaimUseCase {
	return NewClaimUseCase(testLogger(), validator.New(), store, viper.New(), nil, enqueuer, testProviderProducer())
}

func newOrderUseCaseForTest(store *mockOrderStore, quotes *mockQuoteStore, charges *mockChargeStore) *OrderUseCase {
	return NewOrderUseCase(testLogger(), validator.New(), store, quotes, charges, viper.New(), nil, testCustomerProducer())
}

func newProviderUseCaseForTest(store *mockOrderStore) *ProviderUseCase {
	return NewProviderUseCase(testLogger(), validator.New(), store, viper.New(), nil, nil, testProviderProducer())
}

func newLedgerUseCaseForTest(store *mockOrderStore, quotes *mockQuoteStore, charges *mockChargeStore, processor payment.Processor) *LedgerUseCase {
	return NewLedgerUseCase(testLogger(), validator.New(), store, quotes, charges, processor, viper.New(), testCustomerProducer())
}

func newReviewUseCaseForTest(store *mockOrderStore) *ReviewUseCase {
	return NewReviewUseCase(testLogger(), validator.New(), store)
}
