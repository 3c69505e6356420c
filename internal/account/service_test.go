package account

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Farvi-13/Medium-Clone/internal/auth"
	"github.com/Farvi-13/Medium-Clone/internal/models/dto"
	"github.com/Farvi-13/Medium-Clone/internal/storage/memory"
)

func newTestService() (*Service, *memory.Store, *auth.TokenManager) {
	store := memory.NewUserStore()
	tokens := auth.NewTokenManager("test-secret", "medium-clone", time.Hour)
	return NewService(store, tokens), store, tokens
}

func registerReq() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:    "a@x.com",
		Username: "a",
		Password: "secret",
	}
}

func TestCreateStripsPassword(t *testing.T) {
	svc, _, _ := newTestService()

	user, err := svc.Create(context.Background(), registerReq())
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "a", user.Username)
	assert.Empty(t, user.PasswordHash)
}

func TestCreateDuplicate(t *testing.T) {
	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{name: "same email", req: dto.RegisterRequest{Email: "a@x.com", Username: "other", Password: "secret"}},
		{name: "same username", req: dto.RegisterRequest{Email: "other@x.com", Username: "a", Password: "secret"}},
		{name: "same both", req: registerReq()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService()
			_, err := svc.Create(context.Background(), registerReq())
			require.NoError(t, err)

			_, err = svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrDuplicateAccount)
			assert.Equal(t, 1, store.Len(), "no new record may be persisted")
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	created, err := svc.Create(context.Background(), registerReq())
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), dto.LoginRequest{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), registerReq())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), dto.LoginRequest{Email: "a@x.com", Password: "wrong"})
	_, unknownEmail := svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@x.com", Password: "secret"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUpdatePartialMerge(t *testing.T) {
	svc, _, _ := newTestService()
	created, err := svc.Create(context.Background(), registerReq())
	require.NoError(t, err)

	bio := "gopher"
	req := dto.UpdateUserRequest{Bio: &bio}

	updated, err := svc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "gopher", updated.Bio)
	assert.Equal(t, "a@x.com", updated.Email, "unspecified fields keep prior values")
	assert.Equal(t, "a", updated.Username)
	assert.Equal(t, "", updated.Image)

	// Applying the same partial update again yields the same final state.
	again, err := svc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, updated.Bio, again.Bio)
	assert.Equal(t, updated.Email, again.Email)
	assert.Equal(t, updated.Username, again.Username)
	assert.Equal(t, updated.Image, again.Image)
}

func TestUpdatePassword(t *testing.T) {
	svc, _, _ := newTestService()
	created, err := svc.Create(context.Background(), registerReq())
	require.NoError(t, err)

	newPassword := "changed-secret"
	_, err = svc.Update(context.Background(), created.ID, dto.UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "a@x.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := svc.Login(context.Background(), dto.LoginRequest{Email: "a@x.com", Password: "changed-secret"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestUpdateKeepsPasswordWhenAbsent(t *testing.T) {
	svc, _, _ := newTestService()
	created, err := svc.Create(context.Background(), registerReq())
	require.NoError(t, err)

	bio := "gopher"
	_, err = svc.Update(context.Background(), created.ID, dto.UpdateUserRequest{Bio: &bio})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "a@x.com", Password: "secret"})
	assert.NoError(t, err, "update without password must not invalidate the old one")
}

func TestUpdateConflictAtSaveTime(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), registerReq())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), dto.RegisterRequest{Email: "b@x.com", Username: "b", Password: "secret"})
	require.NoError(t, err)

	taken := "a@x.com"
	_, err = svc.Update(context.Background(), second.ID, dto.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestConcurrentCreateSameEmail(t *testing.T) {
	svc, store, _ := newTestService()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), registerReq())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateAccount)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent create may win")
	assert.Equal(t, 1, store.Len(), "no duplicate rows may exist")
}

func TestBuildResponse(t *testing.T) {
	svc, _, tokens := newTestService()
	created, err := svc.Create(context.Background(), registerReq())
	require.NoError(t, err)

	envelope, err := svc.BuildResponse(created)
	require.NoError(t, err)

	assert.Equal(t, created.ID, envelope.User.ID)
	assert.Equal(t, "a@x.com", envelope.User.Email)
	assert.Equal(t, "a", envelope.User.Username)
	require.NotEmpty(t, envelope.User.Token)

	claims, err := tokens.Parse(envelope.User.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "a", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
}
