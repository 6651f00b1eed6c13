package service

import (
	"context"
	"testing"
	"time"

	"thesisrepo/internal/middleware"
	"thesisrepo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-with-enough-entropy-123"

// memoryUsers is an in-memory user store keyed by email.
func memoryUsers() *userRepoStub {
	byEmail := map[string]*models.User{}
	byID := map[uint]*models.User{}
	stub := usersByID()
	stub.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return byEmail[email], nil
	}
	stub.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		u, ok := byID[id]
		if !ok {
			return nil, models.NewNotFoundError("User", id)
		}
		return u, nil
	}
	stub.createFn = func(_ context.Context, u *models.User) error {
		u.ID = uint(len(byID) + 1)
		byEmail[u.Email] = u
		byID[u.ID] = u
		return nil
	}
	return stub
}

func newAuthService(users *userRepoStub) *AuthService {
	svc := NewAuthService(users, testSecret, time.Hour, "final.edu.tr")
	svc.cost = bcrypt.MinCost
	return svc
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuthService(memoryUsers())

	session, err := svc.Register(ctx, RegisterInput{
		FullName:  "Ayse Yilmaz",
		EmailUser: "  Ayse.Yilmaz ",
		Password:  "SecurePass12!@",
	})
	require.NoError(t, err)
	assert.Equal(t, "ayse.yilmaz@final.edu.tr", session.User.Email)
	assert.Equal(t, models.RoleStudent, session.User.RoleID)
	assert.NotEqual(t, "SecurePass12!@", session.User.Password)

	claims, err := middleware.ParseToken(testSecret, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	_, err = svc.Register(ctx, RegisterInput{FullName: "Dup", EmailUser: "ayse.yilmaz", Password: "SecurePass12!@"})
	assertAppError(t, err, models.CodeConflict)

	_, err = svc.Register(ctx, RegisterInput{FullName: "Weak", EmailUser: "weak", Password: "short"})
	assertValidationError(t, err)

	_, err = svc.Register(ctx, RegisterInput{FullName: "", EmailUser: "noname", Password: "SecurePass12!@"})
	assertValidationError(t, err)

	_, err = svc.Register(ctx, RegisterInput{FullName: "Bad", EmailUser: "bad@other.com", Password: "SecurePass12!@"})
	assertValidationError(t, err)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := memoryUsers()
	svc := newAuthService(users)

	_, err := svc.Register(ctx, RegisterInput{FullName: "Can Demir", EmailUser: "can", Password: "SecurePass12!@"})
	require.NoError(t, err)

	session, err := svc.Login(ctx, "CAN", "SecurePass12!@")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Login(ctx, "can", "WrongPass12!@")
	assertAppError(t, err, models.CodeUnauthorized)

	_, err = svc.Login(ctx, "nobody", "SecurePass12!@")
	assertAppError(t, err, models.CodeUnauthorized)

	_, err = svc.Login(ctx, "", "")
	assertValidationError(t, err)

	user, err := users.GetByEmail(ctx, "can@final.edu.tr")
	require.NoError(t, err)
	user.IsActive = false
	_, err = svc.Login(ctx, "can", "SecurePass12!@")
	assertForbiddenError(t, err)

	_, err = svc.Me(ctx, user.ID)
	assertForbiddenError(t, err)
}
