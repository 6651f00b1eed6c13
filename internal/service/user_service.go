package service

import (
	"context"
	"strings"

	"thesisrepo/internal/models"
	"thesisrepo/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
}

// AdminUpdateUserInput changes the non-nil fields of a user.
type AdminUpdateUserInput struct {
	ActorID      uint
	TargetID     uint
	RoleID       *int
	IsActive     *bool
	DepartmentID *uint
	FacultyID    *uint
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListAdvisors returns active advisors for thesis forms.
func (s *UserService) ListAdvisors(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdvisors(ctx)
}

// IsAdmin reports whether userID holds the admin role. Reads go through the
// cached user record.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return user.IsActive && user.IsAdmin(), nil
}

func (s *UserService) UpdateUser(ctx context.Context, in AdminUpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}

	if in.RoleID != nil {
		if !models.ValidRole(*in.RoleID) {
			return nil, models.NewValidationError("role_id must be 1, 2 or 3")
		}
		if in.ActorID == user.ID && *in.RoleID != models.RoleAdmin {
			return nil, models.NewValidationError("You cannot remove your own admin role")
		}
		user.RoleID = *in.RoleID
	}
	if in.IsActive != nil {
		if in.ActorID == user.ID && !*in.IsActive {
			return nil, models.NewValidationError("You cannot deactivate yourself")
		}
		user.IsActive = *in.IsActive
	}
	if in.DepartmentID != nil {
		user.DepartmentID = in.DepartmentID
	}
	if in.FacultyID != nil {
		user.FacultyID = in.FacultyID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return models.NewValidationError("You cannot delete your own account")
	}
	return s.userRepo.Delete(ctx, targetID)
}

// Promote sets the role of the user with the given email.
func (s *UserService) Promote(ctx context.Context, email string, roleID int) (*models.User, error) {
	if !models.ValidRole(roleID) {
		return nil, models.NewValidationError("role must be 1, 2 or 3")
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", email)
	}
	user.RoleID = roleID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureUser creates an active user with the given role unless the email is
// taken, and reports whether it created one.
func (s *UserService) EnsureUser(ctx context.Context, fullName, email, password string, roleID int) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	user := &models.User{
		FullName: fullName,
		Email:    email,
		Password: string(hash),
		RoleID:   roleID,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
