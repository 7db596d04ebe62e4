package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacyorders/internal/metrics"
	"legacyorders/internal/orders/domain"
	"legacyorders/internal/platform/logger"
	sharedinfra "legacyorders/internal/shared/infrastructure"
	"legacyorders/internal/testhelpers"
)

// setupQueryServices importe sampleFile puis retourne les deux services partageant le cache
func setupQueryServices(t *testing.T, ttl time.Duration) (*QueryService, *ImportService, *metrics.Registry) {
	t.Helper()
	tc := testhelpers.SetupTestContext(t)
	reg := metrics.NewRegistry()

	query := NewQueryService(tc.OrderQueryRepo, tc.Cache, ttl, reg, logger.Nop())
	imports := NewImportService(NewFileParser(logger.Nop(), false), tc.UnitOfWork, query, reg, logger.Nop(), ImportOptions{})

	_, err := imports.ProcessFile(context.Background(), sampleFile(t))
	require.NoError(t, err)
	return query, imports, reg
}

func int64Ptr(v int64) *int64 { return &v }

func TestQueryService_AllOrdersFormatted(t *testing.T) {
	svc, _, _ := setupQueryServices(t, 0)

	users, err := svc.FindOrders(context.Background(), OrderQuery{})
	require.NoError(t, err)
	require.Len(t, users, 2)

	alice := users[0]
	assert.Equal(t, int64(1), alice.UserID)
	assert.Equal(t, "Alice", alice.Name)
	require.Len(t, alice.Orders, 2)
	assert.Equal(t, int64(100), alice.Orders[0].OrderID)
	assert.Equal(t, "75.50", alice.Orders[0].Total)
	assert.Equal(t, "2021-03-08", alice.Orders[0].Date)
	assert.Equal(t, []ProductResponse{{ProductID: 1, Value: "10.00"}, {ProductID: 2, Value: "65.50"}}, alice.Orders[0].Products)

	bob := users[1]
	assert.Equal(t, "50.00", bob.Orders[0].Total)
	assert.Equal(t, "50.00", bob.Orders[0].Products[0].Value)
}

func TestQueryService_FilterByOrderIDAcrossUsers(t *testing.T) {
	svc, _, _ := setupQueryServices(t, 0)

	users, err := svc.FindOrders(context.Background(), OrderQuery{OrderID: int64Ptr(100)})
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		require.Len(t, u.Orders, 1)
		assert.Equal(t, int64(100), u.Orders[0].OrderID)
	}
}

func TestQueryService_DateRange(t *testing.T) {
	svc, _, _ := setupQueryServices(t, 0)

	users, err := svc.FindOrders(context.Background(), OrderQuery{StartDate: "2021-05-01", EndDate: "2021-05-01"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(101), users[0].Orders[0].OrderID)
}

func TestQueryService_SingleDateBoundIsIgnored(t *testing.T) {
	svc, _, _ := setupQueryServices(t, 0)

	users, err := svc.FindOrders(context.Background(), OrderQuery{StartDate: "2030-01-01"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestQueryService_NoMatchIsEmptyNotNull(t *testing.T) {
	svc, _, _ := setupQueryServices(t, 0)

	users, err := svc.FindOrders(context.Background(), OrderQuery{OrderID: int64Ptr(999)})
	require.NoError(t, err)

	body, err := json.Marshal(users)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))
}

func TestQueryService_InvalidFilter(t *testing.T) {
	svc, _, _ := setupQueryServices(t, 0)

	_, err := svc.FindOrders(context.Background(), OrderQuery{StartDate: "2021-13-01", EndDate: "2021-12-01"})
	require.ErrorIs(t, err, domain.ErrInvalidFilter)

	_, err = svc.FindOrders(context.Background(), OrderQuery{OrderID: int64Ptr(0)})
	require.ErrorIs(t, err, domain.ErrInvalidFilter)
}

func TestQueryService_CacheHitAndInvalidationOnImport(t *testing.T) {
	svc, imports, reg := setupQueryServices(t, time.Minute)
	ctx := context.Background()

	first, err := svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	_, err = svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Queries.WithLabelValues("hit")))

	content := testhelpers.FixedWidthContent(t, testhelpers.Line(3, "Carol", 300, 5, "4.00", "2021-07-01"))
	_, err = imports.ProcessFile(ctx, []byte(content))
	require.NoError(t, err)

	after, err := svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Len(t, after, 3)
}

// invalidatingRepo simule un import validé pendant la première lecture
type invalidatingRepo struct {
	svc   *QueryService
	calls int
}

func (r *invalidatingRepo) FindUsersWithOrders(_ context.Context, _ domain.OrderFilter) ([]*domain.User, error) {
	r.calls++
	if r.calls == 1 {
		users := []*domain.User{{LegacyUserID: 1, Name: "Alice"}}
		r.svc.Invalidate()
		return users, nil
	}
	return []*domain.User{{LegacyUserID: 1, Name: "Alice"}, {LegacyUserID: 2, Name: "Bob"}}, nil
}

func TestQueryService_InvalidationDuringReadIsNotCached(t *testing.T) {
	repo := &invalidatingRepo{}
	cache := sharedinfra.NewShardedCache(4, time.Minute)
	t.Cleanup(cache.Close)
	svc := NewQueryService(repo, cache, time.Minute, metrics.NewRegistry(), logger.Nop())
	repo.svc = svc
	ctx := context.Background()

	stale, err := svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	fresh, err := svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
	assert.Len(t, fresh, 2)

	_, err = svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls, "la lecture suivante doit venir du cache")
}

func TestQueryService_CachedResultNotAliased(t *testing.T) {
	svc, _, reg := setupQueryServices(t, time.Minute)
	ctx := context.Background()

	first, err := svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	first[0] = UserOrderResponse{UserID: 99, Name: "Mallory"}

	second, err := svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "Alice", second[0].Name)
	second[1] = UserOrderResponse{}

	third, err := svc.FindOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Bob", third[1].Name)
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.Queries.WithLabelValues("hit")))
}

func TestGenerationKey(t *testing.T) {
	assert.Equal(t, "g0:orders:*:*:*", generationKey(0, "orders:*:*:*"))
	assert.Equal(t, "g3:orders:7:*:*", generationKey(3, "orders:7:*:*"))
}

func TestCacheKey_Normalised(t *testing.T) {
	all, err := domain.NewOrderFilter(nil, "2021-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, "orders:*:*:*", cacheKey(all))

	f, err := domain.NewOrderFilter(int64Ptr(7), "2021-01-01", "2021-01-31")
	require.NoError(t, err)
	assert.Equal(t, "orders:7:2021-01-01:2021-01-31", cacheKey(f))
}

func TestOrderMapper_EmptyCollections(t *testing.T) {
	out := OrderMapper{}.ToResponses([]*domain.User{{LegacyUserID: 4, Name: "Dan"}})

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"user_id":4,"name":"Dan","orders":[]}]`, string(body))
}
