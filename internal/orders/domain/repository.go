package domain

import "context"

// UserRepository accès en écriture aux utilisateurs
type UserRepository interface {
	// FindByLegacyID retourne nil, nil si l'utilisateur n'existe pas
	FindByLegacyID(ctx context.Context, legacyUserID int64) (*User, error)
	// Create insère l'utilisateur et renseigne user.ID. Si un utilisateur de même
	// identifiant legacy existe déjà, user est rechargé depuis la base et created vaut false.
	Create(ctx context.Context, user *User) (created bool, err error)
}

// OrderRepository accès en écriture aux commandes
type OrderRepository interface {
	// FindByLegacyIDs retourne les commandes de userID dont l'identifiant legacy est dans legacyOrderIDs
	FindByLegacyIDs(ctx context.Context, userID UserID, legacyOrderIDs []int64) ([]*Order, error)
	// CreateBatch insère les commandes avec leurs produits. Une commande dont la clé
	// (legacy id, utilisateur) existe déjà est ignorée; retourne le nombre insérées.
	CreateBatch(ctx context.Context, orders []*Order) (int, error)
}

// OrderQueryRepository lecture jointe utilisateurs -> commandes -> produits
type OrderQueryRepository interface {
	FindUsersWithOrders(ctx context.Context, filter OrderFilter) ([]*User, error)
}

// Repositories repositories liés à une même unité de travail
type Repositories struct {
	Users  UserRepository
	Orders OrderRepository
}

// UnitOfWork exécute fn de façon atomique: tout ce que fn écrit via repos est validé
// ensemble, ou annulé si fn retourne une erreur.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
