package health

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tair/furniture-storefront/internal/transport"
)

func startBackend(t *testing.T, status grpc_health_v1.HealthCheckResponse_ServingStatus) grpc.ClientConnInterface {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus(transport.ServiceName, status)
	grpc_health_v1.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestCheckAllHealthy(t *testing.T) {
	checker := NewChecker("storefront", map[string]grpc.ClientConnInterface{
		"a:9090": startBackend(t, grpc_health_v1.HealthCheckResponse_SERVING),
		"b:9090": startBackend(t, grpc_health_v1.HealthCheckResponse_SERVING),
	}, transport.NewBreakerSet(5, time.Second), time.Second)

	report := checker.CheckAll(context.Background())
	assert.Equal(t, StatusHealthy, report.Status)
	require.Len(t, report.Backends, 2)
	assert.Equal(t, "closed", report.Backends["a:9090"].Circuit)
}

func TestCheckAllDegraded(t *testing.T) {
	checker := NewChecker("storefront", map[string]grpc.ClientConnInterface{
		"a:9090": startBackend(t, grpc_health_v1.HealthCheckResponse_SERVING),
		"b:9090": startBackend(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING),
	}, nil, time.Second)

	report := checker.CheckAll(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, StatusUnhealthy, report.Backends["b:9090"].Status)
	assert.NotEmpty(t, report.Backends["b:9090"].Error)
}

func TestCheckUnknownEndpoint(t *testing.T) {
	checker := NewChecker("storefront", nil, nil, 0)

	res := checker.CheckBackend(context.Background(), "nowhere:1")
	assert.Equal(t, StatusUnhealthy, res.Status)

	assert.Equal(t, StatusUnhealthy, checker.CheckAll(context.Background()).Status)
}

func TestLive(t *testing.T) {
	checker := NewChecker("storefront", nil, nil, 0)
	assert.Equal(t, StatusHealthy, checker.Live()["status"])
}
