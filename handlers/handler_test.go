package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lindsay-precast/backend/design-service/middleware"
	"lindsay-precast/backend/design-service/models"
	"lindsay-precast/backend/design-service/utils"
)

func requestWithRole(method, target, role string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	claims := &utils.Claims{UserID: "64f000000000000000000001", Email: "user@lindsay.com", Role: role}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func TestCheckRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		wantErr bool
	}{
		{"manager allowed", "manager", []string{"manager"}, false},
		{"engineer in list", "engineer", []string{"engineer", "manager"}, false},
		{"designer rejected", "designer", []string{"manager"}, true},
		{"production rejected", "production", []string{"engineer", "manager"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := requestWithRole(http.MethodDelete, "/api/projects/abc", tt.role)
			err := checkRole(r, tt.allowed)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCheckRole_NoClaims(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/api/projects/abc", nil)
	require.Error(t, checkRole(r, []string{"manager"}))
}

func TestDeleteProject_RequiresManager(t *testing.T) {
	h := NewProjectHandler(nil)

	for _, role := range []string{"designer", "engineer", "production"} {
		w := httptest.NewRecorder()
		h.DeleteProject(w, requestWithRole(http.MethodDelete, "/api/projects/abc", role))
		require.Equal(t, http.StatusForbidden, w.Code, "role %s must not delete projects", role)
	}
}

func TestDesignerCanAccess(t *testing.T) {
	creator := primitive.NewObjectID()
	assignee := primitive.NewObjectID()
	other := primitive.NewObjectID()

	project := &models.Project{CreatedBy: creator, AssignedTo: assignee}

	require.True(t, designerCanAccess("designer", creator.Hex(), project))
	require.True(t, designerCanAccess("designer", assignee.Hex(), project))
	require.False(t, designerCanAccess("designer", other.Hex(), project))

	// Scoping only applies to designers.
	for _, role := range []string{"engineer", "manager", "production"} {
		require.True(t, designerCanAccess(role, other.Hex(), project))
	}
}
