package domain

// UserID identifiant technique (surrogate) attribué par la base
type UserID int64

// User utilisateur persisté, identifié fonctionnellement par LegacyUserID.
// Orders n'est renseigné que par les lectures jointes (OrderQueryRepository).
type User struct {
	ID           UserID
	LegacyUserID int64
	Name         string
	Orders       []*Order
}

// NewUser crée un utilisateur à partir de son premier groupe de lignes
func NewUser(g *GroupedUser) *User {
	return &User{
		LegacyUserID: g.UserID,
		Name:         g.UserName,
	}
}
