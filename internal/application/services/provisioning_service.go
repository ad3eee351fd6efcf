package services

import (
	"context"
	"log"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// Minimum age required at signup, in years
const minimumSignupAge = 13

// Placeholder for profile fields the identity provider did not supply
const unknownAttribute = "Unknown"

// SignupAttributes carries the identity-provider attributes available
// during the signup triggers.
type SignupAttributes struct {
	Username  string
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Birthdate string // ISO date, may be empty
}

// ProvisioningService implements the identity-provider signup hooks: the
// pre-signup age gate and post-confirmation account provisioning.
type ProvisioningService struct {
	userRepo     repositories.UserRepository
	identity     providers.IdentityProvider
	defaultGroup string
	now          func() time.Time
}

// NewProvisioningService creates a new provisioning service
func NewProvisioningService(userRepo repositories.UserRepository, identity providers.IdentityProvider, defaultGroup string) *ProvisioningService {
	if defaultGroup == "" {
		defaultGroup = entities.GroupCustomers
	}
	return &ProvisioningService{
		userRepo:     userRepo,
		identity:     identity,
		defaultGroup: defaultGroup,
		now:          time.Now,
	}
}

// ValidateSignup enforces the signup age gate. A missing birthdate is
// rejected; so is a malformed one. Turning exactly thirteen today passes.
func (s *ProvisioningService) ValidateSignup(attrs SignupAttributes) error {
	if attrs.Birthdate == "" {
		return apperrors.NewValidationError("birthdate is required")
	}

	birthdate, err := time.Parse("2006-01-02", attrs.Birthdate)
	if err != nil {
		return apperrors.NewValidationError("birthdate must be an ISO date (YYYY-MM-DD)")
	}

	if ageInYears(birthdate, s.now()) < minimumSignupAge {
		return apperrors.NewValidationError("you must be at least 13 years old to sign up")
	}
	return nil
}

// ProvisionUser runs after the identity provider confirms an account: it
// places the user in the default group and creates the directory record.
// The two steps are independent; a group failure aborts before the record
// is written, but a record failure does not roll the group back.
func (s *ProvisioningService) ProvisionUser(ctx context.Context, attrs SignupAttributes) (*entities.User, error) {
	if attrs.Username == "" || attrs.Subject == "" {
		return nil, apperrors.NewValidationError("username and subject are required")
	}

	if err := s.identity.AddUserToGroup(ctx, attrs.Username, s.defaultGroup); err != nil {
		log.Printf("Failed to add user %s to group %s: %v", attrs.Username, s.defaultGroup, err)
		return nil, err
	}

	user := &entities.User{
		ID:           attrs.Subject,
		ProfileOwner: entities.ComposeOwnerKey(attrs.Username, attrs.Subject),
		Username:     attrs.Username,
		GroupName:    s.defaultGroup,
		FirstName:    orUnknown(attrs.FirstName),
		LastName:     orUnknown(attrs.LastName),
		Birthdate:    orUnknown(attrs.Birthdate),
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Printf("Failed to create user record for %s: %v", attrs.Username, err)
		return nil, err
	}

	return user, nil
}

// ageInYears computes full years between birthdate and now
func ageInYears(birthdate, now time.Time) int {
	years := now.Year() - birthdate.Year()
	anniversary := birthdate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

func orUnknown(value string) string {
	if value == "" {
		return unknownAttribute
	}
	return value
}
