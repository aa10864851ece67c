// Package users manages operator accounts.
package users

import (
	"context"
	"fmt"

	"github.com/imaijo201-star/real-estate-mg/internal/constants"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the initial password of seeded operators.
const DefaultPassword = "admin1234"

// DefaultOperators are the accounts every installation starts with.
var DefaultOperators = []domain.User{
	{Username: "admin", Email: "admin@realestate.com", Name: "총괄관리자", Phone: "010-1234-5678", Role: constants.Admin},
	{Username: "senior", Email: "senior@realestate.com", Name: "수석매니저", Phone: "010-2345-6789", Role: constants.SeniorManager},
	{Username: "manager", Email: "manager@realestate.com", Name: "매니저", Phone: "010-3456-7890", Role: constants.Manager},
}

type Service struct {
	DB *gorm.DB
}

// SeedOperators creates the default operators that do not exist yet, all
// with password. Existing accounts are left untouched. It returns how many
// were created.
func (s *Service) SeedOperators(ctx context.Context, password string) (int, error) {
	if !validation.IsValidPassword(password) {
		return 0, domain.Invalid("password", "비밀번호는 8자 이상이며 영문과 숫자를 포함해야 합니다.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	created := 0
	for _, op := range DefaultOperators {
		if err := validateOperator(op); err != nil {
			return created, err
		}
		u := op
		u.PasswordHash = string(hash)
		res := s.DB.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
			Create(&u)
		if res.Error != nil {
			return created, fmt.Errorf("failed to seed %s: %w", op.Username, res.Error)
		}
		if res.RowsAffected > 0 {
			created++
			log.Info().Str("username", u.Username).Str("role", u.Role).Msg("users: operator created")
		}
	}
	return created, nil
}

func validateOperator(u domain.User) error {
	switch {
	case !validation.IsValidUsername(u.Username):
		return domain.Invalid("username", "잘못된 아이디입니다: %s", u.Username)
	case u.Email != "" && !validation.IsValidEmail(u.Email):
		return domain.Invalid("email", "잘못된 이메일입니다: %s", u.Email)
	case !constants.IsValidRole(u.Role):
		return domain.Invalid("role", "잘못된 권한입니다: %s", u.Role)
	}
	return nil
}

// FindByUsername returns the operator with username.
func (s *Service) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &domain.NotFoundError{Resource: "user", ID: username}
		}
		return nil, err
	}
	return &u, nil
}
