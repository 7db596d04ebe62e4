package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"legacyorders/internal/metrics"
	"legacyorders/internal/orders/domain"
	"legacyorders/internal/platform/logger"
	sharedinfra "legacyorders/internal/shared/infrastructure"
)

// CacheInvalidator vidé après tout import qui a écrit en base
type CacheInvalidator interface {
	Invalidate()
}

// ImportOptions réglages de l'import
type ImportOptions struct {
	MaxBytes int64
	// Workers nombre d'utilisateurs réconciliés en parallèle (1 = séquentiel)
	Workers int
}

// ImportReport bilan d'un fichier importé
type ImportReport struct {
	Lines         int
	Rejected      int
	Users         int
	UsersCreated  int
	OrdersCreated int
	OrdersSkipped int
}

// userOutcome résultat de la réconciliation d'un utilisateur
type userOutcome struct {
	userID        domain.UserID
	userCreated   bool
	ordersCreated int
	ordersSkipped int
}

// ImportService enchaîne parsing, regroupement et réconciliation avec la base.
// Chaque utilisateur est traité dans sa propre transaction: un échec interrompt
// le fichier mais les utilisateurs déjà validés le restent.
type ImportService struct {
	parser      *FileParser
	uow         domain.UnitOfWork
	invalidator CacheInvalidator
	metrics     *metrics.Registry
	log         *logger.Logger
	opts        ImportOptions
}

// NewImportService crée le service d'import
func NewImportService(
	parser *FileParser,
	uow domain.UnitOfWork,
	invalidator CacheInvalidator,
	registry *metrics.Registry,
	log *logger.Logger,
	opts ImportOptions,
) *ImportService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &ImportService{
		parser:      parser,
		uow:         uow,
		invalidator: invalidator,
		metrics:     registry,
		log:         log.With("service", "import"),
		opts:        opts,
	}
}

// ProcessFile importe le contenu d'un fichier legacy. content nil signifie
// qu'aucun fichier n'a été fourni.
func (s *ImportService) ProcessFile(ctx context.Context, content []byte) (ImportReport, error) {
	start := time.Now()
	report, err := s.processFile(ctx, content)

	s.metrics.ImportDuration.Observe(time.Since(start).Seconds())
	s.metrics.Uploads.WithLabelValues(uploadOutcome(err)).Inc()
	if report.UsersCreated > 0 || report.OrdersCreated > 0 {
		s.invalidator.Invalidate()
	}
	return report, err
}

func (s *ImportService) processFile(ctx context.Context, content []byte) (ImportReport, error) {
	var report ImportReport

	if content == nil {
		return report, domain.ErrFileMissing
	}
	if s.opts.MaxBytes > 0 && int64(len(content)) > s.opts.MaxBytes {
		return report, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrFileTooLarge, len(content), s.opts.MaxBytes)
	}

	s.log.Info("processing file", "bytes", len(content))

	parsed, err := s.parser.Parse(content)
	if err != nil {
		s.metrics.LinesRejected.Inc()
		return report, err
	}
	report.Lines = len(parsed.Lines)
	report.Rejected = len(parsed.Rejected)
	s.metrics.LinesParsed.Add(float64(report.Lines))
	s.metrics.LinesRejected.Add(float64(report.Rejected))

	groups := domain.Group(parsed.Lines)
	report.Users = len(groups)
	s.log.Info("users grouped", "users", len(groups))

	err = s.reconcile(ctx, groups, &report)
	return report, err
}

// reconcile traite les utilisateurs séquentiellement ou via le WorkerPool
func (s *ImportService) reconcile(ctx context.Context, groups []*domain.GroupedUser, report *ImportReport) error {
	var mu sync.Mutex
	record := func(o userOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if o.userCreated {
			report.UsersCreated++
		}
		report.OrdersCreated += o.ordersCreated
		report.OrdersSkipped += o.ordersSkipped
	}

	if s.opts.Workers == 1 || len(groups) < 2 {
		for _, g := range groups {
			o, err := s.reconcileUser(ctx, g)
			if err != nil {
				return err
			}
			record(o)
		}
		return nil
	}

	pool := sharedinfra.NewWorkerPool(ctx, s.opts.Workers)
	pool.Start()
	for _, g := range groups {
		err := pool.Submit(func(ctx context.Context) error {
			o, err := s.reconcileUser(ctx, g)
			if err != nil {
				return err
			}
			record(o)
			return nil
		})
		if errors.Is(err, sharedinfra.ErrPoolStopped) {
			break
		}
	}
	return pool.Wait()
}

// reconcileUser crée l'utilisateur s'il est inconnu (sans jamais le renommer) puis
// insère uniquement les commandes absentes pour cet utilisateur.
func (s *ImportService) reconcileUser(ctx context.Context, g *domain.GroupedUser) (userOutcome, error) {
	var outcome userOutcome

	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		outcome = userOutcome{}

		user, err := repos.Users.FindByLegacyID(ctx, g.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			user = domain.NewUser(g)
			if outcome.userCreated, err = repos.Users.Create(ctx, user); err != nil {
				return err
			}
		}
		outcome.userID = user.ID

		existing, err := repos.Orders.FindByLegacyIDs(ctx, user.ID, g.OrderIDs())
		if err != nil {
			return err
		}
		known := make(map[int64]struct{}, len(existing))
		for _, o := range existing {
			known[o.LegacyOrderID] = struct{}{}
		}

		pending := make([]*domain.Order, 0, g.OrderCount()-len(known))
		for _, o := range g.Orders() {
			if _, ok := known[o.OrderID]; ok {
				continue
			}
			pending = append(pending, domain.NewOrder(user.ID, o))
		}
		if len(pending) > 0 {
			if outcome.ordersCreated, err = repos.Orders.CreateBatch(ctx, pending); err != nil {
				return err
			}
		}
		outcome.ordersSkipped = g.OrderCount() - outcome.ordersCreated
		return nil
	})
	if err != nil {
		return userOutcome{}, fmt.Errorf("reconcile user %d: %w", g.UserID, err)
	}

	if outcome.userCreated {
		s.metrics.UsersCreated.Inc()
		s.log.Info("user created", "legacy_user_id", g.UserID, "user_id", outcome.userID)
	}
	s.metrics.OrdersCreated.Add(float64(outcome.ordersCreated))
	s.metrics.OrdersSkipped.Add(float64(outcome.ordersSkipped))
	s.log.Info("orders saved",
		"legacy_user_id", g.UserID,
		"saved", outcome.ordersCreated,
		"skipped", outcome.ordersSkipped,
	)
	return outcome, nil
}

func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrFileMissing),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrMalformedLine):
		return "rejected"
	default:
		return "error"
	}
}
