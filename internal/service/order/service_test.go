package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/cache"
	"github.com/Additional-Code/bazaar/internal/entity"
	repo "github.com/Additional-Code/bazaar/internal/repository/order"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := m.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return value, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func suppliedOrder() *entity.Order {
	return &entity.Order{
		ID:     "ord-1",
		Number: "BZR-20260830-AAAA1111",
		UserID: "customer-1",
		Status: entity.OrderProcessing,
		Items: []*entity.OrderItem{
			{ProductID: 1, SupplierID: "sup-1", Name: "Water Bottle", Quantity: 2},
		},
	}
}

func cachedService(t *testing.T, order *entity.Order) *Service {
	t.Helper()
	store := newMemoryStore()
	payload, err := json.Marshal(order)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "orders:"+order.ID, payload, 0))
	return &Service{cache: store, logger: zap.NewNop()}
}

func TestGetAllowsSupplierOfOrderedProduct(t *testing.T) {
	svc := cachedService(t, suppliedOrder())

	got, err := svc.Get(context.Background(), repo.Scope{Role: entity.RoleSupplier, UserID: "sup-1"}, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", got.ID)
}

func TestGetHidesOrderFromUnrelatedSupplier(t *testing.T) {
	svc := cachedService(t, suppliedOrder())

	_, err := svc.Get(context.Background(), repo.Scope{Role: entity.RoleSupplier, UserID: "sup-2"}, "ord-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestGetAllowsOwnerAndAdmin(t *testing.T) {
	svc := cachedService(t, suppliedOrder())

	_, err := svc.Get(context.Background(), repo.Scope{Role: entity.RoleUser, UserID: "customer-1"}, "ord-1")
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), repo.Scope{Role: entity.RoleAdmin}, "ord-1")
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), repo.Scope{Role: entity.RoleUser, UserID: "customer-2"}, "ord-1")
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestTransitionRoleGates(t *testing.T) {
	order := suppliedOrder()

	cases := []struct {
		name    string
		actor   repo.Scope
		next    entity.OrderStatus
		allowed bool
	}{
		{"admin advances", repo.Scope{Role: entity.RoleAdmin}, entity.OrderShipped, true},
		{"admin cancels", repo.Scope{Role: entity.RoleAdmin}, entity.OrderCancelled, true},
		{"supplier ships supplied order", repo.Scope{Role: entity.RoleSupplier, UserID: "sup-1"}, entity.OrderShipped, true},
		{"supplier cannot cancel", repo.Scope{Role: entity.RoleSupplier, UserID: "sup-1"}, entity.OrderCancelled, false},
		{"unrelated supplier locked out", repo.Scope{Role: entity.RoleSupplier, UserID: "sup-2"}, entity.OrderShipped, false},
		{"owner cancels", repo.Scope{Role: entity.RoleUser, UserID: "customer-1"}, entity.OrderCancelled, true},
		{"owner cannot advance", repo.Scope{Role: entity.RoleUser, UserID: "customer-1"}, entity.OrderShipped, false},
		{"stranger cannot cancel", repo.Scope{Role: entity.RoleUser, UserID: "customer-2"}, entity.OrderCancelled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, transitionAllowed(tc.actor, order, tc.next))
		})
	}
}
