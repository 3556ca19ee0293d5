package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mazzeh-api/models"
	"mazzeh-api/testutil"
)

func TestCreateSuperuser(t *testing.T) {
	db := testutil.NewDB(t)

	user, err := createSuperuser(db, "0999000000", "secret", "Site", "Admin")
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.True(t, stored.IsStaff)
	assert.True(t, stored.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))

	_, err = createSuperuser(db, "0999000000", "other", "", "")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreateSuperuserNeedsCredentials(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := createSuperuser(db, "", "secret", "", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = createSuperuser(db, "0999", "", "", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
