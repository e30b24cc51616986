package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lindsay-precast/backend/design-service/logging"
)

// projectNumberPrefix builds the per-year prefix shared by generated project
// numbers, e.g. "PRJ-2025-".
func projectNumberPrefix(year int) string {
	return fmt.Sprintf("PRJ-%d-", year)
}

// projectSequence parses the numeric sequence out of a project number
// (the third hyphen-separated segment). Returns false for malformed input.
func projectSequence(number string) (int, bool) {
	parts := strings.Split(number, "-")
	if len(parts) < 3 {
		return 0, false
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, false
	}
	return seq, true
}

// MaxProjectSequence returns the greatest sequence among the given project
// numbers, comparing the parsed sequences numerically. Sequences past 999
// grow a digit without re-padding, so a string comparison would rank 999
// above 1000; the numeric comparison is what keeps allocation correct there.
// Malformed numbers are skipped; an empty or all-malformed slice yields 0.
func MaxProjectSequence(numbers []string) int {
	max := 0
	for _, number := range numbers {
		if seq, ok := projectSequence(number); ok && seq > max {
			max = seq
		}
	}
	return max
}

// NextProjectNumber computes the project number that follows lastNumber within
// the given year. lastNumber is the greatest existing number for that year, or
// empty when the year has no projects yet. Sequences are zero-padded to three
// digits and grow past "999" without re-padding.
func NextProjectNumber(year int, lastNumber string) string {
	sequence := 1
	if last, ok := projectSequence(lastNumber); ok {
		sequence = last + 1
	}
	return fmt.Sprintf("%s%03d", projectNumberPrefix(year), sequence)
}

// AllocateProjectNumber derives the next free project number for the year by
// taking the numeric max over the year's existing numbers. It does not reserve
// the number; the unique index on projectNumber is the backstop against a
// concurrent allocation of the same value.
func (s *ProjectService) AllocateProjectNumber(ctx context.Context, year int) (string, error) {
	filter := bson.M{"projectNumber": bson.M{"$regex": "^" + projectNumberPrefix(year)}}
	opts := options.Find().SetProjection(bson.M{"projectNumber": 1})

	cursor, err := s.ProjectsCollection.Find(ctx, filter, opts)
	if err != nil {
		logging.Logger.Errorf("Event ID: NUMBER_ALLOC_READ_FAILED, Description: Failed to read project numbers for year %d: %v", year, err)
		return "", fmt.Errorf("failed to allocate project number: %v", err)
	}
	defer cursor.Close(ctx)

	var numbers []string
	for cursor.Next(ctx) {
		var doc struct {
			ProjectNumber string `bson:"projectNumber"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		numbers = append(numbers, doc.ProjectNumber)
	}
	if err := cursor.Err(); err != nil {
		logging.Logger.Errorf("Event ID: NUMBER_ALLOC_READ_FAILED, Description: Failed to read project numbers for year %d: %v", year, err)
		return "", fmt.Errorf("failed to allocate project number: %v", err)
	}

	number := fmt.Sprintf("%s%03d", projectNumberPrefix(year), MaxProjectSequence(numbers)+1)
	logging.Logger.Infof("Event ID: NUMBER_ALLOCATED, Description: Allocated project number %s for year %d", number, year)
	return number, nil
}
