package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/oncounter-billing/models"
	"github.com/yeremiapane/oncounter-billing/utils"
	"gorm.io/gorm"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthService struct {
	db     *gorm.DB
	hasher PasswordHasher
	tokens *utils.TokenIssuer
}

func NewAuthService(db *gorm.DB, hasher PasswordHasher, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{db: db, hasher: hasher, tokens: tokens}
}

// Authenticate checks the credentials of a staff member and returns the
// employee behind them. Bad credentials and an inactive employee fail with
// different errors.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Employee, error) {
	account, err := s.checkCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	var employee models.Employee
	if err := s.db.WithContext(ctx).Where("account_id = ?", account.ID).First(&employee).Error; err != nil {
		return nil, lookupErr(err, "employee for account", username)
	}
	if !employee.IsActive {
		utils.InfoLogger.WithField("emp_id", employee.EmpID).Warn("inactive employee tried to authenticate")
		return nil, ErrAccountInactive
	}
	employee.Account = *account

	utils.InfoLogger.WithFields(logrus.Fields{
		"emp_id":   employee.EmpID,
		"username": account.Username,
		"name":     account.FullName(),
	}).Info("employee authenticated")
	return &employee, nil
}

// IssueTokens hands out an access/refresh pair for an active account.
func (s *AuthService) IssueTokens(ctx context.Context, username, password string) (utils.TokenPair, error) {
	account, err := s.checkCredentials(ctx, username, password)
	if err != nil {
		return utils.TokenPair{}, err
	}
	if err := s.checkActive(ctx, account); err != nil {
		return utils.TokenPair{}, err
	}
	return s.tokens.IssuePair(account.ID, account.Username)
}

// Refresh trades a refresh token for a new access token while the account
// behind it is still present and active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrBadRequest
	}
	claims, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != utils.TokenTypeRefresh {
		return "", ErrWrongTokenType
	}
	if _, err := s.principal(ctx, claims); err != nil {
		return "", err
	}
	return s.tokens.Refresh(refreshToken)
}

// ParseAccess resolves a bearer access token to its claims. The token is
// refused once its account is deleted or deactivated.
func (s *AuthService) ParseAccess(ctx context.Context, token string) (*utils.CustomClaims, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, err
	}
	if _, err := s.principal(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) Verify(token string) error {
	if token == "" {
		return ErrBadRequest
	}
	_, err := s.tokens.Parse(token)
	return err
}

func (s *AuthService) principal(ctx context.Context, claims *utils.CustomClaims) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).First(&account, claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %d is gone: %w", claims.UserID, ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	if err := s.checkActive(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// checkActive rejects a disabled account, or one whose employee is inactive.
func (s *AuthService) checkActive(ctx context.Context, account *models.Account) error {
	if !account.IsActive {
		return ErrAccountInactive
	}
	var inactive int64
	err := s.db.WithContext(ctx).Model(&models.Employee{}).
		Where("account_id = ? AND is_active = ?", account.ID, false).
		Count(&inactive).Error
	if err != nil {
		return err
	}
	if inactive > 0 {
		return ErrAccountInactive
	}
	return nil
}

func (s *AuthService) checkCredentials(ctx context.Context, username, password string) (*models.Account, error) {
	if username == "" || password == "" {
		return nil, ErrBadRequest
	}

	var account models.Account
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, lookupErr(err, "account", username)
	}
	if err := s.hasher.Compare(account.Password, password); err != nil {
		if !errors.Is(err, utils.ErrPasswordMismatch) {
			utils.LogError("services", "AuthService.checkCredentials", username, err)
		}
		return nil, ErrInvalidCredentials
	}
	return &account, nil
}
