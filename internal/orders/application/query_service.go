package application

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"legacyorders/internal/metrics"
	"legacyorders/internal/orders/domain"
	"legacyorders/internal/platform/logger"
	sharedinfra "legacyorders/internal/shared/infrastructure"
)

// OrderQuery paramètres bruts de recherche; chaînes vides = non renseigné
type OrderQuery struct {
	OrderID   *int64
	StartDate string
	EndDate   string
}

// QueryService recherche des commandes, avec cache des réponses.
// generation est incrémenté à chaque invalidation et fait partie de la clé: une
// lecture commencée avant une invalidation ne peut plus être servie depuis le cache.
type QueryService struct {
	repo       domain.OrderQueryRepository
	mapper     OrderMapper
	cache      sharedinfra.Cache
	cacheTTL   time.Duration
	generation atomic.Uint64
	metrics    *metrics.Registry
	log        *logger.Logger
}

// NewQueryService crée le service de recherche. cacheTTL <= 0 désactive le cache.
func NewQueryService(
	repo domain.OrderQueryRepository,
	cache sharedinfra.Cache,
	cacheTTL time.Duration,
	registry *metrics.Registry,
	log *logger.Logger,
) *QueryService {
	return &QueryService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  registry,
		log:      log.With("service", "query"),
	}
}

// FindOrders retourne les utilisateurs et leurs commandes correspondant aux critères.
// Une erreur de validation enveloppe domain.ErrInvalidFilter.
// La slice retournée appartient à l'appelant; les réponses imbriquées sont partagées
// avec le cache et ne doivent pas être modifiées.
func (s *QueryService) FindOrders(ctx context.Context, q OrderQuery) ([]UserOrderResponse, error) {
	filter, err := domain.NewOrderFilter(q.OrderID, q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	gen := s.generation.Load()
	key := generationKey(gen, cacheKey(filter))
	if s.cacheEnabled() {
		if cached, found := s.cache.Get(key); found {
			response := cached.([]UserOrderResponse)
			s.metrics.Queries.WithLabelValues("hit").Inc()
			s.log.Info("users found", "users", len(response), "cached", true)
			return append(make([]UserOrderResponse, 0, len(response)), response...), nil
		}
	}

	users, err := s.repo.FindUsersWithOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.log.Info("users found", "users", len(users))

	response := s.mapper.ToResponses(users)
	if s.cacheEnabled() {
		s.metrics.Queries.WithLabelValues("miss").Inc()
		if s.generation.Load() == gen {
			s.cache.Set(key, response, s.cacheTTL)
		} else {
			s.log.Debug("cache invalidated during read, result not cached", "key", key)
		}
	} else {
		s.metrics.Queries.WithLabelValues("disabled").Inc()
	}
	return append(make([]UserOrderResponse, 0, len(response)), response...), nil
}

// Invalidate vide le cache des réponses (appelé après un import)
func (s *QueryService) Invalidate() {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Clear()
	}
}

// generationKey préfixe la clé par la génération du cache: "g<n>:<clé>"
func generationKey(gen uint64, key string) string {
	return "g" + strconv.FormatUint(gen, 10) + ":" + key
}

func (s *QueryService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// cacheKey clé normalisée du filtre: "orders:<id|*>:<start|*>:<end|*>"
func cacheKey(f domain.OrderFilter) string {
	b := sharedinfra.NewCacheKeyBuilder("orders")
	if f.OrderID != nil {
		b.AddInt64(*f.OrderID)
	} else {
		b.Add("*")
	}
	if f.DateRange != nil {
		b.Add(f.DateRange.StartString()).Add(f.DateRange.EndString())
	} else {
		b.Add("*").Add("*")
	}
	return b.Build()
}
