package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lindsay-precast/backend/design-service/models"
)

func validInput() CreateProjectInput {
	return CreateProjectInput{
		CustomerID:  primitive.NewObjectID().Hex(),
		ProductType: models.ProductStorm,
		Specifications: models.Specifications{
			Length: 8,
			Width:  10,
			Height: 12,
		},
	}
}

func TestValidateCreateProject_Valid(t *testing.T) {
	require.Empty(t, validateCreateProject(validInput()))
}

func TestValidateCreateProject_ListsEveryInvalidField(t *testing.T) {
	in := CreateProjectInput{
		CustomerID:  "",
		ProductType: "plastic",
		Specifications: models.Specifications{
			Length: 0,
			Width:  -3,
			Height: 0,
		},
	}

	fields := validateCreateProject(in)

	got := map[string]bool{}
	for _, f := range fields {
		got[f.Field] = true
	}
	require.True(t, got["customerId"])
	require.True(t, got["productType"])
	require.True(t, got["specifications.length"])
	require.True(t, got["specifications.width"])
	require.True(t, got["specifications.height"])
	require.Len(t, fields, 5)
}

func TestValidateCreateProject_BadCustomerIDFormat(t *testing.T) {
	in := validInput()
	in.CustomerID = "not-an-object-id"

	fields := validateCreateProject(in)
	require.Len(t, fields, 1)
	require.Equal(t, "customerId", fields[0].Field)
}

func TestValidateCreateProject_StructureTypes(t *testing.T) {
	in := validInput()
	in.Structures = []models.Structure{
		{Type: models.StructureSSMH},
		{Type: "Bunker"},
		{Type: models.StructureMeterPits, CustomName: "North pit"},
	}

	fields := validateCreateProject(in)
	require.Len(t, fields, 1)
	require.Equal(t, "structures.1.type", fields[0].Field)
}

func TestActiveProjectsDelta(t *testing.T) {
	tests := []struct {
		name      string
		oldStatus models.ProjectStatus
		newStatus models.ProjectStatus
		want      int
	}{
		{"into production", models.StatusReview, models.StatusProduction, -1},
		{"out of production", models.StatusProduction, models.StatusInProgress, 1},
		{"between non-production", models.StatusRequested, models.StatusApproved, 0},
		{"production to production", models.StatusProduction, models.StatusProduction, 0},
		{"requested to requested", models.StatusRequested, models.StatusRequested, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, activeProjectsDelta(tt.oldStatus, tt.newStatus))
		})
	}
}

func TestImmutableProjectPaths(t *testing.T) {
	require.True(t, immutableProjectPaths["projectNumber"])
	require.True(t, immutableProjectPaths["customerId"])
	require.True(t, immutableProjectPaths["_id"])
	require.False(t, immutableProjectPaths["projectName"])
	require.False(t, immutableProjectPaths["productionHandoff.checklist.drawingsFinalized"])
}

func TestValidateCreateProject_SuppliedNumberIsFreeForm(t *testing.T) {
	// Caller-supplied project numbers are taken verbatim; only the unique
	// index constrains them. An empty number means allocate one.
	in := validInput()
	in.ProjectNumber = "LEGACY-77-A"
	require.Empty(t, validateCreateProject(in))

	in.ProjectNumber = ""
	require.Empty(t, validateCreateProject(in))
}

func TestStatusChangeUpdate_LeavingProductionClearsHandoff(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	update := statusChangeUpdate(models.StatusProduction, models.StatusReview, now)

	set := update["$set"].(bson.M)
	require.Equal(t, models.StatusReview, set["status"])
	require.Equal(t, false, set["productionHandoff.sentToProduction"])
	unset := update["$unset"].(bson.M)
	require.Contains(t, unset, "productionHandoff.handoffDate")
}

func TestStatusChangeUpdate_NonProductionEdgesLeaveHandoffAlone(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		oldStatus models.ProjectStatus
		newStatus models.ProjectStatus
	}{
		{"between non-production", models.StatusRequested, models.StatusApproved},
		{"into production", models.StatusReview, models.StatusProduction},
		{"production to production", models.StatusProduction, models.StatusProduction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := statusChangeUpdate(tt.oldStatus, tt.newStatus, now)
			set := update["$set"].(bson.M)
			require.NotContains(t, set, "productionHandoff.sentToProduction")
			require.NotContains(t, update, "$unset")
		})
	}
}

func TestClearsHandoff(t *testing.T) {
	require.True(t, clearsHandoff(models.StatusProduction, models.StatusReview))
	require.False(t, clearsHandoff(models.StatusProduction, models.StatusProduction))
	require.False(t, clearsHandoff(models.StatusReview, models.StatusProduction))
	require.False(t, clearsHandoff(models.StatusRequested, models.StatusApproved))
}

func TestRecentProjectsPush_RingSemantics(t *testing.T) {
	// New ids go to the front and the list is truncated to the five newest.
	projectID := primitive.NewObjectID()

	push := recentProjectsPush(projectID)["projectHistory.recentProjectIds"].(bson.M)

	require.Equal(t, []primitive.ObjectID{projectID}, push["$each"])
	require.Equal(t, 0, push["$position"])
	require.Equal(t, 5, push["$slice"])
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "specifications.length", Message: "Length must be positive"},
		{Field: "productType", Message: "Unknown product type"},
	}}
	require.Contains(t, err.Error(), "specifications.length")
	require.Contains(t, err.Error(), "productType")
}
