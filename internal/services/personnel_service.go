package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
)

const (
	generatedPasswordLength = 10
	passwordAlphabet        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// personnelService handles staff accounts and authentication.
type personnelService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewPersonnelService creates a new PersonnelServicer.
func NewPersonnelService(db *gorm.DB, notifier Notifier) PersonnelServicer {
	return &personnelService{db: db, notifier: notifier}
}

// CreatePersonnel registers a staff member with a generated password, which is
// sent to their e-mail address and not returned.
func (s *personnelService) CreatePersonnel(input CreatePersonnelInput) (*models.Personnel, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	role := input.Role
	if role == "" {
		role = models.RoleNone
	}
	if !role.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown role")
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		base := usernameBase(input.FirstName, input.LastName)
		if base == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "first or last name is required to generate a username")
		}
		var err error
		username, err = nextAvailableUsername(base, s.usernameTaken)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else {
		taken, err := s.usernameTaken(username)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if taken {
			return nil, apperrors.ErrDuplicateUsername
		}
	}

	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	person := &models.Personnel{
		Username:    username,
		Email:       email,
		Password:    string(hash),
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Phone:       strings.TrimSpace(input.Phone),
		Role:        role,
		IsSuperuser: input.IsSuperuser,
		IsActive:    true,
	}
	if err := s.db.Create(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	notifyBestEffort(s.notifier, []string{person.Email},
		"Your account has been created",
		fmt.Sprintf("Hello %s,\n\nUsername: %s\nPassword: %s\n\nPlease change it after your first login.",
			person.FullName(), person.Username, password))

	return person, nil
}

// CreateSuperuser registers an administrator with a chosen password.
func (s *personnelService) CreateSuperuser(username, email, password string) (*models.Personnel, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username, email and password are required")
	}
	if len(password) < 8 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 8 characters")
	}

	taken, err := s.usernameTaken(username)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if taken {
		return nil, apperrors.ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	person := &models.Personnel{
		Username:    username,
		Email:       email,
		Password:    string(hash),
		Role:        models.RoleDirector,
		IsSuperuser: true,
		IsActive:    true,
	}
	if err := s.db.Create(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return person, nil
}

// GetPersonnelByID retrieves a staff member by ID
func (s *personnelService) GetPersonnelByID(id string) (*models.Personnel, error) {
	var person models.Personnel
	if err := s.db.Where("id = ?", id).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPersonnelNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &person, nil
}

func (s *personnelService) ListPersonnel(page pagination.PageRequest, role *models.Role) (*pagination.PageResponse[models.Personnel], error) {
	q := s.db.Model(&models.Personnel{})
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	result, err := pagination.Fetch[models.Personnel](q, page, "last_name ASC, first_name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetPrincipal resolves the authorization view of an active staff member.
func (s *personnelService) GetPrincipal(id string) (models.Principal, error) {
	person, err := s.GetPersonnelByID(id)
	if err != nil {
		return models.Principal{}, err
	}
	if !person.IsActive {
		return models.Principal{}, apperrors.ErrUnauthorized
	}
	return person.Principal(), nil
}

// AttemptLogin checks credentials and applies the failed-attempt lockout.
func (s *personnelService) AttemptLogin(username, password string) (*models.Personnel, error) {
	var person models.Personnel
	err := s.db.Where("username = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(username)), true).
		First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	if person.LockedUntil != nil && person.LockedUntil.After(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(person.Password), []byte(password)) != nil {
		updates := map[string]interface{}{"failed_login_attempts": person.FailedLoginAttempts + 1}
		if person.FailedLoginAttempts+1 >= maxFailedLogins {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if err := s.db.Model(&person).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.db.Model(&person).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	person.FailedLoginAttempts = 0
	person.LockedUntil = nil
	person.LastLoginAt = &now
	return &person, nil
}

func (s *personnelService) StoreRefreshTokenHash(id string, tokenHash string) error {
	res := s.db.Model(&models.Personnel{}).Where("id = ?", id).Update("refresh_token_hash", tokenHash)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrPersonnelNotFound
	}
	return nil
}

func (s *personnelService) GetRefreshTokenHash(id string) (string, error) {
	person, err := s.GetPersonnelByID(id)
	if err != nil {
		return "", err
	}
	return person.RefreshTokenHash, nil
}

// usernameTaken includes soft-deleted rows since the unique index does.
func (s *personnelService) usernameTaken(username string) (bool, error) {
	var count int64
	if err := s.db.Unscoped().Model(&models.Personnel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// usernameBase is the lowercased first letter of the first name followed by
// the lowercased last name with spaces removed.
func usernameBase(firstName, lastName string) string {
	var b strings.Builder
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(firstName)); r != utf8.RuneError {
		b.WriteRune(r)
	}
	b.WriteString(strings.ReplaceAll(strings.TrimSpace(lastName), " ", ""))
	return strings.ToLower(b.String())
}

// nextAvailableUsername returns base, or base1, base2, ... whichever is free first.
func nextAvailableUsername(base string, taken func(string) (bool, error)) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(n)
	}
}

// generatePassword draws length characters uniformly from passwordAlphabet using crypto/rand.
func generatePassword(length int) (string, error) {
	limit := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
