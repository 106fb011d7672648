package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tair/furniture-storefront/internal/media"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

func TestActorCallsServiceMethod(t *testing.T) {
	conn := &fakeConn{handler: func(method string) (any, error) {
		return map[string]any{"products": []map[string]any{{"id": "p1", "name": "Sofa", "price": 500}}}, nil
	}}
	actor := NewActor(conn, "backend:9000", "tok", time.Second, nil)

	products, err := actor.GetActiveProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Sofa", products[0].Name)
	assert.Equal(t, int64(500), products[0].Price)

	call := conn.lastCall()
	assert.Equal(t, "/storefront.v1.Storefront/GetActiveProducts", call.method)
	assert.Equal(t, []string{"Bearer tok"}, call.auth)
}

func TestActorAnonymousSendsNoToken(t *testing.T) {
	conn := &fakeConn{}
	actor := NewActor(conn, "backend:9000", "", time.Second, nil)

	require.NoError(t, actor.AddCategory(context.Background(), "chairs"))

	call := conn.lastCall()
	assert.Empty(t, call.auth)
	assert.JSONEq(t, `{"name":"chairs"}`, string(call.body))
}

func TestActorMissingProductIsNil(t *testing.T) {
	conn := &fakeConn{handler: func(string) (any, error) {
		return nil, status.Error(codes.NotFound, "no such product")
	}}
	actor := NewActor(conn, "backend:9000", "", time.Second, nil)

	p, err := actor.GetProduct(context.Background(), "p404")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestActorMapsStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		code codes.Code
		want error
	}{
		{"unauthenticated", codes.Unauthenticated, ErrUnauthorized},
		{"permission denied", codes.PermissionDenied, ErrUnauthorized},
		{"unavailable", codes.Unavailable, ErrUnavailable},
		{"invalid", codes.InvalidArgument, ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{handler: func(string) (any, error) {
				return nil, status.Error(tt.code, "boom")
			}}
			actor := NewActor(conn, "backend:9000", "", time.Second, nil)

			_, err := actor.GetAllOrders(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestActorSendsOrder(t *testing.T) {
	conn := &fakeConn{}
	actor := NewActor(conn, "backend:9000", "tok", time.Second, nil)

	err := actor.CreateOrder(context.Background(), domain.NewOrder{
		ID:      "order-1",
		Name:    "Ann",
		Phone:   "555",
		Address: "Main St",
		Cart:    []domain.CartItem{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	var sent domain.NewOrder
	require.NoError(t, json.Unmarshal(conn.lastCall().body, &sent))
	assert.Equal(t, "order-1", sent.ID)
	assert.Equal(t, []domain.CartItem{{ProductID: "p1", Quantity: 2}}, sent.Cart)
}

func TestActorMediaUploadReportsProgress(t *testing.T) {
	conn := &fakeConn{}
	actor := NewActor(conn, "backend:9000", "tok", time.Second, nil)

	var progress []int
	img := media.FromBytes([]byte("png")).WithUploadProgress(func(p int) { progress = append(progress, p) })

	err := actor.UpdateProductMedia(context.Background(), "p1", []*media.Blob{img}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 100}, progress)
}

func TestActorCircuitOpenIsUnavailable(t *testing.T) {
	conn := &fakeConn{handler: func(string) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	}}
	breaker := NewBreaker("backend:9000", 2, time.Minute)
	actor := NewActor(conn, "backend:9000", "", time.Second, breaker)

	for i := 0; i < 2; i++ {
		_, err := actor.GetAllCategories(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, StateOpen, breaker.State())

	_, err := actor.GetAllCategories(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, conn.calls, 2)
}
