package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/orderdesk/app/models"
	"github.com/shashiranjanraj/orderdesk/config"
	"github.com/shashiranjanraj/orderdesk/pkg/auth"
	"github.com/shashiranjanraj/orderdesk/pkg/jsonstore"
	"github.com/shashiranjanraj/orderdesk/pkg/logger"
)

var (
	// ErrReservedUsername is returned when registration targets the admin login.
	ErrReservedUsername = errors.New("username is reserved")

	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("user already exists")

	// ErrInvalidCredentials covers both unknown username and wrong password,
	// so a caller cannot tell which part was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const usersResource = "users"

// UserRepository handles the users resource file.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// loadUsers reads the users file, masking a corrupt file as empty. The
// corruption is already logged and counted by jsonstore.
func loadUsers() (models.UserMap, error) {
	users := models.UserMap{}
	if err := jsonstore.Load(usersResource, &users); err != nil && !errors.Is(err, jsonstore.ErrCorrupt) {
		return nil, err
	}
	return users, nil
}

// EnsureAdmin seeds the reserved admin account. Idempotent: a no-op when the
// admin login is already present. Runs once at process start.
func (r *UserRepository) EnsureAdmin() error {
	login := config.AdminLogin()

	return jsonstore.Mutate(usersResource, func() error {
		users, err := loadUsers()
		if err != nil {
			return err
		}
		if _, ok := users[login]; ok {
			return nil
		}

		hash, err := auth.HashPassword(config.AdminPassword())
		if err != nil {
			return fmt.Errorf("repositories: hash admin password: %w", err)
		}

		users[login] = models.User{
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			CreatedAt:    time.Now().UTC(),
		}
		if err := jsonstore.Save(usersResource, users); err != nil {
			return err
		}
		logger.Info("admin user created", "login", login)
		return nil
	})
}

// Register creates a client-role account.
//   - ErrReservedUsername when username equals the admin login
//   - ErrUsernameTaken when the username already exists
func (r *UserRepository) Register(username, password string) (models.User, error) {
	var u models.User

	if username == config.AdminLogin() {
		return u, ErrReservedUsername
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return u, fmt.Errorf("repositories: hash password: %w", err)
	}

	err = jsonstore.Mutate(usersResource, func() error {
		users, err := loadUsers()
		if err != nil {
			return err
		}
		if _, ok := users[username]; ok {
			return ErrUsernameTaken
		}

		u = models.User{
			PasswordHash: hash,
			Role:         models.RoleClient,
			CreatedAt:    time.Now().UTC(),
		}
		users[username] = u
		return jsonstore.Save(usersResource, users)
	})
	return u, err
}

// Authenticate checks a username/password pair. Unknown username and wrong
// password both return ErrInvalidCredentials.
func (r *UserRepository) Authenticate(username, password string) (models.User, error) {
	users, err := loadUsers()
	if err != nil {
		return models.User{}, err
	}

	u, ok := users[username]
	if !ok || !auth.VerifyPassword(password, u.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Find looks up a user by username.
func (r *UserRepository) Find(username string) (models.User, bool) {
	users, err := loadUsers()
	if err != nil {
		return models.User{}, false
	}
	u, ok := users[username]
	return u, ok
}
