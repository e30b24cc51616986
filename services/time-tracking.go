package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lindsay-precast/backend/design-service/logging"
	"lindsay-precast/backend/design-service/models"
)

// TimerResult is the summary returned by the start and stop timer operations.
type TimerResult struct {
	TimeEntryID string     `json:"timeEntryId"`
	IsRunning   bool       `json:"isRunning"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Duration    int        `json:"duration,omitempty"`
	TotalHours  float64    `json:"totalHours,omitempty"`
}

// entryDuration is the entry length in whole minutes, rounded half away from
// zero: 90 seconds rounds to 2.
func entryDuration(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// computeTotalHours recomputes the project total from every entry's duration,
// in hours rounded to two decimals. Full recomputation keeps the total
// self-correcting after entry-level edits.
func computeTotalHours(entries []models.TimeEntry) float64 {
	totalMinutes := 0
	for _, entry := range entries {
		totalMinutes += entry.Duration
	}
	return math.Round(float64(totalMinutes)/60*100) / 100
}

// runningEntryFor finds the user's running entry on the project, if any. The
// one-running-timer invariant is scoped per user per project.
func runningEntryFor(entries []models.TimeEntry, userID primitive.ObjectID) *models.TimeEntry {
	for i := range entries {
		if entries[i].UserID == userID && entries[i].IsRunning {
			return &entries[i]
		}
	}
	return nil
}

// startTimerFilter matches the project only while the user has no running
// entry on it, so two concurrent starts cannot both push one.
func startTimerFilter(projectID, userID primitive.ObjectID) bson.M {
	return bson.M{
		"_id": projectID,
		"timeTracking.entries": bson.M{
			"$not": bson.M{
				"$elemMatch": bson.M{"userId": userID, "isRunning": true},
			},
		},
	}
}

// StartTimer opens a new running time entry for the user on the project.
func (s *ProjectService) StartTimer(ctx context.Context, projectID string, userID primitive.ObjectID, notes string) (*TimerResult, error) {
	project, err := s.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if runningEntryFor(project.TimeTracking.Entries, userID) != nil {
		return nil, &ConflictError{Message: "Timer already running"}
	}

	entry := models.TimeEntry{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		StartTime: s.Now(),
		Duration:  0,
		Notes:     notes,
		IsRunning: true,
	}

	result, err := s.ProjectsCollection.UpdateOne(ctx,
		startTimerFilter(project.ID, userID),
		bson.M{
			"$push": bson.M{"timeTracking.entries": entry},
			"$set":  bson.M{"updatedAt": s.Now()},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to start timer: %v", err)
	}
	if result.MatchedCount == 0 {
		// Lost the race against a concurrent start by the same user.
		return nil, &ConflictError{Message: "Timer already running"}
	}

	logging.Logger.Infof("Event ID: TIMER_STARTED, Description: Timer started on project %s by user %s", project.ProjectNumber, userID.Hex())

	return &TimerResult{
		TimeEntryID: entry.ID.Hex(),
		IsRunning:   true,
		StartTime:   &entry.StartTime,
	}, nil
}

// StopTimer closes the user's running entry, records its rounded duration and
// recomputes the project's total hours.
func (s *ProjectService) StopTimer(ctx context.Context, projectID string, userID primitive.ObjectID, notes string) (*TimerResult, error) {
	project, err := s.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	entry := runningEntryFor(project.TimeTracking.Entries, userID)
	if entry == nil {
		return nil, &PreconditionError{Message: "No running timer found"}
	}

	endTime := s.Now()
	entry.EndTime = &endTime
	entry.Duration = entryDuration(entry.StartTime, endTime)
	entry.IsRunning = false
	if notes != "" {
		entry.Notes = notes
	}
	totalHours := computeTotalHours(project.TimeTracking.Entries)

	set := bson.M{
		"timeTracking.entries.$.endTime":   endTime,
		"timeTracking.entries.$.duration":  entry.Duration,
		"timeTracking.entries.$.isRunning": false,
		"timeTracking.totalHours":          totalHours,
		"updatedAt":                        endTime,
	}
	if notes != "" {
		set["timeTracking.entries.$.notes"] = entry.Notes
	}

	result, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": project.ID, "timeTracking.entries._id": entry.ID},
		bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to stop timer: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, &NotFoundError{Resource: "time entry"}
	}

	logging.Logger.Infof("Event ID: TIMER_STOPPED, Description: Timer stopped on project %s by user %s, duration %d min", project.ProjectNumber, userID.Hex(), entry.Duration)

	return &TimerResult{
		TimeEntryID: entry.ID.Hex(),
		IsRunning:   false,
		EndTime:     entry.EndTime,
		Duration:    entry.Duration,
		TotalHours:  totalHours,
	}, nil
}
