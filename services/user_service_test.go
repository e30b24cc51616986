package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lindsay-precast/backend/design-service/models"
)

func TestValidateRegister_Valid(t *testing.T) {
	in := RegisterInput{
		Name:     "Dana Smith",
		Email:    "dana@lindsayprecast.com",
		Password: "hunter22",
		Role:     models.RoleDesigner,
	}
	require.Empty(t, validateRegister(in))
}

func TestValidateRegister_ListsEveryInvalidField(t *testing.T) {
	in := RegisterInput{
		Name:     "D",
		Email:    "dana",
		Password: "short",
		Role:     "admin",
	}

	fields := validateRegister(in)

	got := map[string]bool{}
	for _, f := range fields {
		got[f.Field] = true
	}
	require.True(t, got["name"])
	require.True(t, got["email"])
	require.True(t, got["password"])
	require.True(t, got["role"])
	require.Len(t, fields, 4)
}

func TestValidRoles(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleDesigner, models.RoleEngineer, models.RoleManager, models.RoleProduction} {
		require.True(t, models.ValidRole(role))
	}
	require.False(t, models.ValidRole("admin"))
	require.False(t, models.ValidRole(""))
}
