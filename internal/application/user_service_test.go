package application

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

const testSalt = "unit-salt"

// memoryRepo is an in-memory UserRepository for service tests.
type memoryRepo struct {
	byID     map[string]*entity.User
	byEmail  map[string]*entity.User
	verified map[string]bool
	nextID   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byID:     map[string]*entity.User{},
		byEmail:  map[string]*entity.User{},
		verified: map[string]bool{},
	}
}

func (m *memoryRepo) Create(u *entity.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repo.ErrEmailTaken
	}
	m.nextID++
	u.ID = "user-" + strconv.Itoa(m.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memoryRepo) GetByID(id string) (*entity.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) GetByEmail(email string) (*entity.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) Update(u *entity.User) error {
	stored, ok := m.byID[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	delete(m.byEmail, stored.Email)
	u.UpdatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memoryRepo) UpdatePassword(id, passwordHash string) error {
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memoryRepo) IsVerified(id string) (bool, error) {
	if _, ok := m.byID[id]; !ok {
		return false, repo.ErrNotFound
	}
	return m.verified[id], nil
}

func (m *memoryRepo) MarkVerified(id string) error {
	if _, ok := m.byID[id]; !ok {
		return repo.ErrNotFound
	}
	m.verified[id] = true
	return nil
}

var _ repo.UserRepository = (*memoryRepo)(nil)

func newTestService(r repo.UserRepository) *Service {
	jwt := helpers.NewJWTManager("a-secret", "r-secret", time.Hour, 24*time.Hour)
	return NewService(r, jwt, testSalt, nil, "", nil, nil, nil, "", nil)
}

func TestRegister_CreatesUserWithHashedPassword(t *testing.T) {
	r := newMemoryRepo()
	svc := newTestService(r)

	u, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ann",
		Email:    "a@b.com",
		UserType: "regular",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, entity.UserTypeRegular, u.Type)
	require.Equal(t, helpers.HashPassword("secret1", testSalt), u.Password())

	stored, err := r.GetByEmail("a@b.com")
	require.NoError(t, err)
	require.True(t, stored.VerifyPassword("secret1", testSalt))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r := newMemoryRepo()
	svc := newTestService(r)

	in := RegisterInput{Name: "Ann", Email: "a@b.com", UserType: "regular", Password: "secret1"}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), in)
	require.ErrorIs(t, err, repo.ErrEmailTaken)
}

func TestRegister_InvalidUserType(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ann", Email: "a@b.com", UserType: "admin", Password: "secret1",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "user_type", verr.Fields[0].Field)
}

func TestRegister_FieldViolations(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "an extremely long name", Email: "not-an-email", UserType: "pro", Password: "secret1",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
}

func TestRegister_PasswordLength(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	for _, pwd := range []string{"", "12345", "1234567890123"} {
		_, err := svc.Register(context.Background(), RegisterInput{
			Name: "Ann", Email: "a@b.com", UserType: "regular", Password: pwd,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "password %q", pwd)
		require.Equal(t, "password", verr.Fields[0].Field)
	}
}

func TestAuthenticate(t *testing.T) {
	r := newMemoryRepo()
	svc := newTestService(r)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ann", Email: "a@b.com", UserType: "regular", Password: "secret1",
	})
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "a@b.com", u.Email)

	_, err = svc.Authenticate(context.Background(), "a@b.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@b.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_ReturnsProjectionAndTokens(t *testing.T) {
	r := newMemoryRepo()
	svc := newTestService(r)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Keks", Email: "keks@b.com", UserType: "pro", Password: "torrance",
	})
	require.NoError(t, err)

	rdo, pair, err := svc.Login(context.Background(), "keks@b.com", "torrance")
	require.NoError(t, err)
	require.Equal(t, "Keks", rdo.Name)
	require.True(t, rdo.IsPro)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.True(t, pair.AccessTokenExpiry.Before(pair.RefreshTokenExpiry))
}

func TestResetPassword(t *testing.T) {
	r := newMemoryRepo()
	svc := newTestService(r)

	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ann", Email: "a@b.com", UserType: "regular", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), u.ID, "newsecret"))

	_, err = svc.Authenticate(context.Background(), "a@b.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	got, err := svc.Authenticate(context.Background(), "a@b.com", "newsecret")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	var verr *ValidationError
	err = svc.ResetPassword(context.Background(), u.ID, "short")
	require.ErrorAs(t, err, &verr)

	err = svc.ResetPassword(context.Background(), "missing-id", "newsecret")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	r := newMemoryRepo()
	svc := newTestService(r)

	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ann", Email: "a@b.com", UserType: "regular", Password: "secret1",
	})
	require.NoError(t, err)

	got, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Name: "Anna", AvatarPath: "avatars/anna.png"})
	require.NoError(t, err)
	require.Equal(t, "Anna", got.Name)
	require.Equal(t, "avatars/anna.png", got.AvatarPath)

	// Empty fields keep previous values
	got, err = svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{})
	require.NoError(t, err)
	require.Equal(t, "Anna", got.Name)
	require.Equal(t, "avatars/anna.png", got.AvatarPath)

	var verr *ValidationError
	_, err = svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Name: "a name that is way too long"})
	require.ErrorAs(t, err, &verr)

	_, err = svc.UpdateProfile(context.Background(), "missing-id", UpdateProfileInput{Name: "X"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{}
	require.Equal(t, "validation failed", err.Error())

	err = &ValidationError{Fields: []validation.FieldError{
		{Field: "name", Rule: "max", Message: "must be at most 15 characters long"},
		{Field: "email", Rule: "email", Message: "must be a valid email address"},
	}}
	require.Equal(t, "name must be at most 15 characters long; email must be a valid email address", err.Error())
}

func TestRefresh_RotatesTokens(t *testing.T) {
	r := newMemoryRepo()
	svc := newTestService(r)

	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ann", Email: "a@b.com", UserType: "regular", Password: "secret1",
	})
	require.NoError(t, err)

	pair, err := svc.IssueTokens(context.Background(), u)
	require.NoError(t, err)

	newPair, uid, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, uid)
	require.NotEmpty(t, newPair.AccessToken)

	_, _, err = svc.Refresh(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSearchUsers_NoIndexConfigured(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	hits, err := svc.SearchUsers(context.Background(), "ann", 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestGetProfile(t *testing.T) {
	r := newMemoryRepo()
	svc := newTestService(r)

	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ann", Email: "a@b.com", UserType: "regular", Password: "secret1",
	})
	require.NoError(t, err)

	got, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	_, err = svc.GetProfile("missing")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.True(t, errors.Is(err, ErrUserNotFound))
}
