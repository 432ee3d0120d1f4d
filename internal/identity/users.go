package identity

import (
	"context"
	"errors"

	"github.com/prodsmart/backend/internal/domain/user"
	"github.com/prodsmart/backend/internal/store"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const collection = "users"

// Users is the identity store: the users collection behind a typed facade.
type Users struct {
	docs store.Store
}

func NewUsers(docs store.Store) *Users {
	return &Users{docs: docs}
}

func (r *Users) GetByEmail(ctx context.Context, email string) (user.User, error) {
	doc, err := r.docs.FindOne(ctx, collection, store.Filter{"email": email})

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return fromDocument(doc), nil
}

func (r *Users) GetByID(ctx context.Context, id string) (user.User, error) {
	doc, err := r.docs.FindOne(ctx, collection, store.Filter{"id": id})

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return fromDocument(doc), nil
}

// Create registers a new identity. Email uniqueness is enforced here, at
// creation, with a lookup-then-insert against the shared collection.
func (r *Users) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	_, err := r.docs.FindOne(ctx, collection, store.Filter{"email": email})

	if err == nil {
		return user.User{}, ErrEmailTaken
	}

	if !errors.Is(err, store.ErrNotFound) {
		return user.User{}, err
	}

	id, err := r.docs.Insert(ctx, collection, store.Document{
		"email":         email,
		"password_hash": passwordHash,
		"name":          name,
	})

	if err != nil {
		return user.User{}, err
	}

	return user.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
	}, nil
}

func fromDocument(doc store.Document) user.User {
	u := user.User{}

	if v, ok := doc["id"].(string); ok {
		u.ID = v
	}
	if v, ok := doc["email"].(string); ok {
		u.Email = v
	}
	if v, ok := doc["password_hash"].(string); ok {
		u.PasswordHash = v
	}
	if v, ok := doc["name"].(string); ok {
		u.Name = v
	}

	return u
}
