package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/pkg/crypto"
	apperrors "github.com/charlesng35/collegehub/pkg/errors"
)

// ErrAccountExists reports an email address that is already registered.
var ErrAccountExists = apperrors.New("ACCOUNT_EXISTS", "An account with that email already exists", http.StatusConflict)

// Principal is a resolved caller identity. Exactly one of Student or Staff is set
// for those roles; both are nil for admins and the system account.
type Principal struct {
	Account models.Account
	Student *models.Student
	Staff   *models.Staff
}

// ID returns the account identifier.
func (p *Principal) ID() string { return p.Account.ID }

// Role returns the account role.
func (p *Principal) Role() models.Role { return p.Account.Role }

// DisplayName returns the name used in notification bodies.
func (p *Principal) DisplayName() string { return p.Account.FullName() }

// CreateAccountInput describes a new login identity and its profile.
type CreateAccountInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
}

// AccountDirectory answers identity questions for the notification core:
// the active admin roster, single-account lookups, and the system sentinel.
type AccountDirectory struct {
	db          *gorm.DB
	systemEmail string

	mu       sync.Mutex
	systemID string
}

// NewAccountDirectory constructs an AccountDirectory. An empty systemEmail selects the default sentinel address.
func NewAccountDirectory(db *gorm.DB, systemEmail string) (*AccountDirectory, error) {
	if db == nil {
		return nil, errors.New("account directory: db is required")
	}
	systemEmail = strings.ToLower(strings.TrimSpace(systemEmail))
	if systemEmail == "" {
		systemEmail = models.SystemAccountEmail
	}
	return &AccountDirectory{db: db, systemEmail: systemEmail}, nil
}

// ActiveAdmins returns every active admin account at the time of the call.
func (d *AccountDirectory) ActiveAdmins(ctx context.Context) ([]models.Account, error) {
	ctx = ensureContext(ctx)
	var admins []models.Account
	if err := d.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Order("created_at ASC").
		Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("account directory: list admins: %w", err)
	}
	return admins, nil
}

// Get loads a single account.
func (d *AccountDirectory) Get(ctx context.Context, accountID string) (*models.Account, error) {
	ctx = ensureContext(ctx)
	var account models.Account
	if err := d.db.WithContext(ctx).First(&account, "id = ?", strings.TrimSpace(accountID)).Error; err != nil {
		return nil, notFoundOr(err, func(err error) error {
			return fmt.Errorf("account directory: get account: %w", err)
		})
	}
	return &account, nil
}

// Resolve loads an account together with its role-specific profile.
func (d *AccountDirectory) Resolve(ctx context.Context, accountID string) (*Principal, error) {
	ctx = ensureContext(ctx)
	account, err := d.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	principal := &Principal{Account: *account}
	switch account.Role {
	case models.RoleStudent:
		var student models.Student
		if err := d.db.WithContext(ctx).First(&student, "account_id = ?", account.ID).Error; err != nil {
			return nil, notFoundOr(err, func(err error) error {
				return fmt.Errorf("account directory: load student profile: %w", err)
			})
		}
		student.Account = account
		principal.Student = &student
	case models.RoleStaff:
		var staff models.Staff
		if err := d.db.WithContext(ctx).First(&staff, "account_id = ?", account.ID).Error; err != nil {
			return nil, notFoundOr(err, func(err error) error {
				return fmt.Errorf("account directory: load staff profile: %w", err)
			})
		}
		staff.Account = account
		principal.Staff = &staff
	}
	return principal, nil
}

// SystemAccountID returns the sentinel account id, creating the account on first use.
// The resolved id is cached for the lifetime of the directory.
func (d *AccountDirectory) SystemAccountID(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.systemID != "" {
		return d.systemID, nil
	}
	id, err := d.ensureSystemAccount(ensureContext(ctx))
	if err != nil {
		return "", err
	}
	d.systemID = id
	return id, nil
}

func (d *AccountDirectory) ensureSystemAccount(ctx context.Context) (string, error) {
	db := d.db.WithContext(ctx)

	var account models.Account
	err := db.Where("email = ?", d.systemEmail).First(&account).Error
	if err == nil {
		return account.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("account directory: load system account: %w", err)
	}

	account = models.Account{
		Email:     d.systemEmail,
		FirstName: "System",
		Role:      models.RoleSystem,
		IsActive:  true,
	}
	if err := db.Create(&account).Error; err != nil {
		if !isUniqueConstraintError(err) {
			return "", fmt.Errorf("account directory: create system account: %w", err)
		}
		// Another writer won the race; the unique email index guarantees a single row.
		account = models.Account{}
		if err := db.Where("email = ?", d.systemEmail).First(&account).Error; err != nil {
			return "", fmt.Errorf("account directory: reload system account: %w", err)
		}
	}
	return account.ID, nil
}

// CreateAccount provisions an account and, for students and staff, the matching profile.
func (d *AccountDirectory) CreateAccount(ctx context.Context, input CreateAccountInput) (*Principal, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	switch input.Role {
	case models.RoleAdmin, models.RoleStaff, models.RoleStudent:
	default:
		return nil, apperrors.NewBadRequest("role must be admin, staff or student")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account directory: hash password: %w", err)
	}

	principal := &Principal{Account: models.Account{
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      input.Role,
		IsActive:  true,
	}}

	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&principal.Account).Error; err != nil {
			return err
		}
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		switch input.Role {
		case models.RoleStudent:
			principal.Student = &models.Student{AccountID: principal.Account.ID, RegistrationNumber: "STU-" + suffix}
			return tx.Create(principal.Student).Error
		case models.RoleStaff:
			principal.Staff = &models.Staff{AccountID: principal.Account.ID, StaffIDNumber: "STF-" + suffix}
			return tx.Create(principal.Staff).Error
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("account directory: create account: %w", err)
	}
	if principal.Student != nil {
		principal.Student.Account = &principal.Account
	}
	if principal.Staff != nil {
		principal.Staff.Account = &principal.Account
	}
	return principal, nil
}

// SetActive toggles whether an account can sign in and receive admin fan-out.
func (d *AccountDirectory) SetActive(ctx context.Context, accountID string, active bool) error {
	ctx = ensureContext(ctx)
	result := d.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND role <> ?", accountID, models.RoleSystem).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("account directory: set active: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Authenticate verifies email and password for an active, non-system account.
func (d *AccountDirectory) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	ctx = ensureContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var account models.Account
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("account directory: load account: %w", err)
	}

	if account.Role == models.RoleSystem || !account.IsActive || account.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if !crypto.VerifyPassword(account.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &account, nil
}

// EnsureAdmin creates the given admin when no admin account exists yet. It reports whether one was created.
func (d *AccountDirectory) EnsureAdmin(ctx context.Context, input CreateAccountInput) (bool, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.Account{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return false, fmt.Errorf("account directory: count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	input.Role = models.RoleAdmin
	if _, err := d.CreateAccount(ctx, input); err != nil {
		return false, err
	}
	return true, nil
}
