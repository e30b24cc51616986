package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lindsay-precast/backend/design-service/models"
)

func TestEntryDuration_RoundsToNearestMinute(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{60 * time.Second, 1},
		{90 * time.Second, 2}, // 1.5 rounds half away from zero
		{149 * time.Second, 2},
		{150 * time.Second, 3},
		{2 * time.Hour, 120},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, entryDuration(start, start.Add(tt.elapsed)), "elapsed %v", tt.elapsed)
	}
}

func TestComputeTotalHours(t *testing.T) {
	entries := []models.TimeEntry{
		{Duration: 30},
		{Duration: 45},
		{Duration: 15},
	}
	require.Equal(t, 1.5, computeTotalHours(entries))
}

func TestComputeTotalHours_RoundsToTwoDecimals(t *testing.T) {
	// 50 minutes is 0.8333... hours
	require.Equal(t, 0.83, computeTotalHours([]models.TimeEntry{{Duration: 50}}))
	// 100 minutes is 1.6666... hours, rounds up
	require.Equal(t, 1.67, computeTotalHours([]models.TimeEntry{{Duration: 100}}))
}

func TestComputeTotalHours_Empty(t *testing.T) {
	require.Equal(t, 0.0, computeTotalHours(nil))
}

func TestRunningEntryFor_ScopedPerUser(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	entries := []models.TimeEntry{
		{ID: primitive.NewObjectID(), UserID: alice, IsRunning: false},
		{ID: primitive.NewObjectID(), UserID: bob, IsRunning: true},
	}

	require.Nil(t, runningEntryFor(entries, alice))

	entry := runningEntryFor(entries, bob)
	require.NotNil(t, entry)
	require.Equal(t, bob, entry.UserID)
}

func TestRunningEntryFor_IgnoresStoppedEntries(t *testing.T) {
	user := primitive.NewObjectID()
	entries := []models.TimeEntry{
		{ID: primitive.NewObjectID(), UserID: user, IsRunning: false},
		{ID: primitive.NewObjectID(), UserID: user, IsRunning: false},
	}
	require.Nil(t, runningEntryFor(entries, user))
}

func TestStartTimerFilter_ExcludesRunningEntry(t *testing.T) {
	// The push only matches while the user has no running entry, so two
	// concurrent starts cannot both persist one.
	projectID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	filter := startTimerFilter(projectID, userID)

	require.Equal(t, projectID, filter["_id"])
	not := filter["timeTracking.entries"].(bson.M)["$not"].(bson.M)
	elem := not["$elemMatch"].(bson.M)
	require.Equal(t, userID, elem["userId"])
	require.Equal(t, true, elem["isRunning"])
}
