package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const TokenTTL = 72 * time.Hour

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     models.Role
}

// RegisterUser creates the account. Affiliates start PENDING with a fresh
// referral code; admins start ACTIVE.
func RegisterUser(db *gorm.DB, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewInternal("Failed to hash password", err)
	}

	status := models.UserStatusPending
	if in.Role == models.RoleAdmin {
		status = models.UserStatusActive
	}

	var user models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return NewConflict("User already exists with this email")
		}

		user = models.User{
			FullName: strings.TrimSpace(in.FullName),
			Email:    email,
			Password: string(hashedPassword),
			Role:     in.Role,
			Status:   status,
		}
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			return err
		}

		if in.Role == models.RoleAffiliate {
			code, err := utils.GenerateUniqueReferralCode(tx, user.FullName)
			if err != nil {
				return err
			}
			affiliate := models.Affiliate{
				UserID:        user.ID,
				ReferralCode:  code,
				PayoutDetails: []byte("{}"),
			}
			if err := tx.Omit(clause.Associations).Create(&affiliate).Error; err != nil {
				return err
			}
			user.Affiliate = &affiliate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks credentials first, then account status. Unknown email
// and wrong password produce the same error.
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewAuthentication("Invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, NewAuthentication("Invalid email or password")
	}

	switch user.Status {
	case models.UserStatusActive:
	case models.UserStatusPending:
		return nil, NewAuthorization("Your account is pending approval. Please wait for admin activation.")
	case models.UserStatusInactive:
		return nil, NewAuthorization("Your account has been deactivated. Please contact support.")
	case models.UserStatusSuspended:
		return nil, NewAuthorization("Your account has been suspended. Please contact support.")
	default:
		return nil, NewAuthorization("Account is not active")
	}

	return &user, nil
}

// IssueToken signs an HS256 session token carrying user_id and role.
func IssueToken(user *models.User, secret string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(TokenTTL)
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
