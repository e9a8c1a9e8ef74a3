package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/karimelh/salespoint/internal/user"
)

func hash(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts the right password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		stored := &user.User{ID: 1, Username: "admin", PasswordHash: hash(t, "admin123"), Role: user.RoleAdmin}
		repo.EXPECT().GetByUsername(ctx, "admin").Return(stored, nil)

		svc := user.NewService(repo)
		got, err := svc.Authenticate(ctx, "admin", "admin123")

		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		stored := &user.User{ID: 1, Username: "admin", PasswordHash: hash(t, "admin123")}
		repo.EXPECT().GetByUsername(ctx, "admin").Return(stored, nil)
		repo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, user.ErrNotFound)

		svc := user.NewService(repo)

		_, err := svc.Authenticate(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)

		_, err = svc.Authenticate(ctx, "ghost", "admin123")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password and defaults the role", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, user.RoleUser, u.Role)
			assert.NotEqual(t, "secret", u.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))
			u.ID = 2
			return nil
		})

		svc := user.NewService(repo)
		got, err := svc.Create(ctx, user.CreateParams{Username: "cashier", Password: "secret", Name: "Cashier"})

		require.NoError(t, err)
		assert.Equal(t, int64(2), got.ID)
	})

	t.Run("requires username, password and name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		svc := user.NewService(repo)
		_, err := svc.Create(ctx, user.CreateParams{Username: "cashier"})

		assert.Error(t, err)
	})
}

func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the bootstrap admin once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().GetByUsername(ctx, "admin").Return(nil, user.ErrNotFound)
		repo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, user.RoleAdmin, u.Role)
			return nil
		})

		svc := user.NewService(repo)
		require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin123", "Administrator"))
	})

	t.Run("leaves an existing admin alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().GetByUsername(ctx, "admin").Return(&user.User{ID: 1, Username: "admin"}, nil)

		svc := user.NewService(repo)
		require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin123", "Administrator"))
	})
}
