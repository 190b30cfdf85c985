package logic

import (
	"testing"
	"time"

	"github.com/blues/gfc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	db := setupDB(t)
	logic := NewUserLogic(db, setupDispatcher(t, db))

	t.Run("creates user with hashed password", func(t *testing.T) {
		user, err := logic.Signup("Jane", "jane@x.com", "secret-password", "donor")
		require.NoError(t, err)
		assert.Equal(t, "donor", user.Role)
		assert.NotEqual(t, "secret-password", user.PasswordHash)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := logic.Signup("Jane Again", "jane@x.com", "secret-password", "donor")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects unknown role instead of defaulting to donor", func(t *testing.T) {
		_, err := logic.Signup("Eve", "eve@x.com", "secret-password", "superuser")
		assert.Error(t, err)

		var count int64
		require.NoError(t, db.Model(&model.UserModel{}).Where("email = ?", "eve@x.com").Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := logic.Signup("Bob", "bob@x.com", "short", "donor")
		assert.Error(t, err)
	})
}

func TestAuthenticate(t *testing.T) {
	db := setupDB(t)
	logic := NewUserLogic(db, setupDispatcher(t, db))
	_, err := logic.Signup("Jane", "jane@x.com", "secret-password", "donor")
	require.NoError(t, err)

	user, err := logic.Authenticate("jane@x.com", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.Name)

	_, err = logic.Authenticate("jane@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown email and wrong password are indistinguishable
	_, err = logic.Authenticate("nobody@x.com", "secret-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordReset(t *testing.T) {
	db := setupDB(t)
	logic := NewUserLogic(db, setupDispatcher(t, db))
	_, err := logic.Signup("Jane", "jane@x.com", "secret-password", "donor")
	require.NoError(t, err)

	t.Run("unknown email succeeds silently without outbox row", func(t *testing.T) {
		require.NoError(t, logic.RequestPasswordReset("nobody@x.com", "https://gfc.test/reset"))

		var count int64
		require.NoError(t, db.Model(&model.EmailOutboxModel{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("known email gets token and reset mail", func(t *testing.T) {
		require.NoError(t, logic.RequestPasswordReset("jane@x.com", "https://gfc.test/reset"))

		var user model.UserModel
		require.NoError(t, db.Where("email = ?", "jane@x.com").First(&user).Error)
		assert.NotEmpty(t, user.ResetToken)
		assert.True(t, user.ResetTokenExpiry.After(time.Now()))

		var email model.EmailOutboxModel
		require.NoError(t, db.First(&email).Error)
		assert.Equal(t, "jane@x.com", email.To)
		assert.Contains(t, email.Text, user.ResetToken)
	})

	t.Run("reset with valid token changes password and burns token", func(t *testing.T) {
		var user model.UserModel
		require.NoError(t, db.Where("email = ?", "jane@x.com").First(&user).Error)

		require.NoError(t, logic.ResetPassword(user.ResetToken, "brand-new-password"))

		_, err := logic.Authenticate("jane@x.com", "brand-new-password")
		assert.NoError(t, err)
		_, err = logic.Authenticate("jane@x.com", "secret-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		// token is single use
		err = logic.ResetPassword(user.ResetToken, "another-password")
		assert.ErrorIs(t, err, ErrResetTokenInvalid)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		require.NoError(t, logic.RequestPasswordReset("jane@x.com", "https://gfc.test/reset"))

		var user model.UserModel
		require.NoError(t, db.Where("email = ?", "jane@x.com").First(&user).Error)
		require.NoError(t, db.Model(&user).Update("reset_token_expiry", time.Now().Add(-time.Minute)).Error)

		err := logic.ResetPassword(user.ResetToken, "another-password")
		assert.ErrorIs(t, err, ErrResetTokenInvalid)
	})
}
