package commands

import (
	"testing"

	dbpkg "fanhub/db"
	"fanhub/models"
	"fanhub/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdmin(t *testing.T) {
	db, err := dbpkg.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, dbpkg.Migrate(db))

	member, err := createAdmin(db, adminOptions{
		Name:        "Club Staff",
		Email:       " Staff@Club.com ",
		Password:    "secret1",
		Association: "Futebol Clube do Porto",
	})
	require.NoError(t, err)

	assert.Equal(t, "staff@club.com", member.Email)
	assert.Empty(t, member.Password)
	assert.True(t, member.IsStaff())
	assert.False(t, member.IsSuperadmin())
	assert.Equal(t, "FCDP-000001", member.MembershipNumber)

	var stored models.Member
	require.NoError(t, db.First(&stored, member.ID).Error)
	assert.True(t, tools.PasswordMatches(stored.Password, "secret1"))

	var assoc models.Association
	require.NoError(t, db.First(&assoc, stored.AssociationID).Error)
	assert.Equal(t, "futebol-clube-do-porto", assoc.Slug)

	t.Run("reuses the association and grants superadmin", func(t *testing.T) {
		root, err := createAdmin(db, adminOptions{
			Email: "root@club.com", Password: "secret1", Association: "futebol clube do porto", Superadmin: true,
		})
		require.NoError(t, err)
		assert.Equal(t, assoc.ID, root.AssociationID)
		assert.True(t, root.IsSuperadmin())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := createAdmin(db, adminOptions{Email: "staff@club.com", Password: "secret1", Association: "x"})
		assert.EqualError(t, err, "email already registered")

		_, err = createAdmin(db, adminOptions{Email: "bad", Password: "secret1", Association: "x"})
		assert.EqualError(t, err, "invalid email")

		_, err = createAdmin(db, adminOptions{Email: "new@club.com", Password: "123", Association: "x"})
		assert.Error(t, err)

		_, err = createAdmin(db, adminOptions{Email: "new@club.com", Password: "secret1", Association: "!!"})
		assert.EqualError(t, err, "association is required")
	})
}
