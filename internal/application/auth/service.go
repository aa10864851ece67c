package auth

import (
	"context"
	"strings"

	"github.com/imaijo201-star/real-estate-mg/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserFinder abstracts operator lookup (GORM in production, fakes in tests).
type UserFinder interface {
	FindByUsernameAndPassword(ctx context.Context, username, password string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByUsernameAndPassword(ctx context.Context, username, password string) (*domain.User, error) {
	return LoginUser(g.DB.WithContext(ctx), LoginInput{Username: username, Password: password})
}

func (g *GormUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return VerifyUser(ctx, g.DB, id)
}

// LoginUser finds the operator by username and verifies the password.
// Unknown users and wrong passwords return the same error.
func LoginUser(db *gorm.DB, input LoginInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}
	var u domain.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// VerifyUser loads the operator behind a session; a session whose user was
// removed is treated as unauthenticated.
func VerifyUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return &u, nil
}
