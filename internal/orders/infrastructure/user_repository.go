package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"legacyorders/internal/orders/domain"
	"legacyorders/internal/shared/infrastructure"
)

// UserRepository repository SQL des utilisateurs
type UserRepository struct {
	infrastructure.BaseRepository
}

// NewUserRepository crée un repository utilisateurs
func NewUserRepository(db *sql.DB, dialect infrastructure.Dialect) *UserRepository {
	return &UserRepository{
		BaseRepository: infrastructure.NewBaseRepository(db, dialect),
	}
}

// WithTx retourne un repository qui écrit dans la transaction tx
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{BaseRepository: r.BaseRepository.WithTx(tx)}
}

// FindByLegacyID trouve un utilisateur par son identifiant legacy; nil s'il n'existe pas
func (r *UserRepository) FindByLegacyID(ctx context.Context, legacyUserID int64) (*domain.User, error) {
	query := `SELECT id, legacy_user_id, name FROM users WHERE legacy_user_id = ?`

	var (
		user domain.User
		id   int64
	)
	err := r.QueryRow(ctx, query, legacyUserID).Scan(&id, &user.LegacyUserID, &user.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", legacyUserID, err)
	}
	user.ID = domain.UserID(id)
	return &user, nil
}

// Create insère l'utilisateur. ON CONFLICT couvre la course entre deux uploads
// concurrents: le perdant relit l'utilisateur existant.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (bool, error) {
	query := `
		INSERT INTO users (legacy_user_id, name)
		VALUES (?, ?)
		ON CONFLICT (legacy_user_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.QueryRow(ctx, query, user.LegacyUserID, user.Name).Scan(&id)
	switch {
	case err == nil:
		user.ID = domain.UserID(id)
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, findErr := r.FindByLegacyID(ctx, user.LegacyUserID)
		if findErr != nil {
			return false, findErr
		}
		if existing == nil {
			return false, fmt.Errorf("create user %d: conflict without existing row", user.LegacyUserID)
		}
		*user = *existing
		return false, nil
	default:
		return false, fmt.Errorf("create user %d: %w", user.LegacyUserID, err)
	}
}
