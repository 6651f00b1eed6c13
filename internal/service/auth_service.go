package service

import (
	"context"
	"strings"
	"time"

	"thesisrepo/internal/middleware"
	"thesisrepo/internal/models"
	"thesisrepo/internal/repository"
	"thesisrepo/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users and issues tokens. Addresses are always
// <email_user>@<domain>.
type AuthService struct {
	userRepo repository.UserRepository
	secret   string
	ttl      time.Duration
	domain   string
	cost     int
}

type RegisterInput struct {
	FullName     string `json:"full_name" validate:"notblank,max=160"`
	EmailUser    string `json:"email_user" validate:"required"`
	Password     string `json:"password" validate:"required"`
	FacultyID    *uint  `json:"faculty_id"`
	DepartmentID *uint  `json:"department_id"`
}

// Session is a signed token and the user it was issued for.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(userRepo repository.UserRepository, secret string, ttl time.Duration, domain string) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   secret,
		ttl:      ttl,
		domain:   domain,
		cost:     bcrypt.DefaultCost,
	}
}

// TTL is how long issued tokens stay valid.
func (s *AuthService) TTL() time.Duration { return s.ttl }

// Email builds the institutional address for a typed email user.
func (s *AuthService) Email(emailUser string) string {
	return strings.ToLower(strings.TrimSpace(emailUser)) + "@" + s.domain
}

// Register creates a student account. Self-registration never grants
// another role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	emailUser := strings.ToLower(strings.TrimSpace(in.EmailUser))
	if err := validation.ValidateEmailUser(emailUser); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	email := s.Email(emailUser)
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		Password:     string(hash),
		RoleID:       models.RoleStudent,
		FacultyID:    in.FacultyID,
		DepartmentID: in.DepartmentID,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

// Login checks credentials. Unknown users and wrong passwords are
// indistinguishable; inactive accounts are refused after the password check.
func (s *AuthService) Login(ctx context.Context, emailUser, password string) (*Session, error) {
	if strings.TrimSpace(emailUser) == "" || password == "" {
		return nil, models.NewValidationError("email_user and password are required")
	}
	user, err := s.userRepo.GetByEmail(ctx, s.Email(emailUser))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, models.NewForbiddenError("Account is inactive")
	}
	return s.session(user)
}

// Me returns the active user behind a token.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return loadActor(ctx, s.userRepo, userID)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := middleware.IssueToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: token, User: user}, nil
}
