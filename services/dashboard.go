package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lindsay-precast/backend/design-service/models"
)

// DashboardStats is the landing-page summary.
type DashboardStats struct {
	ActiveProjects     int64            `json:"activeProjects"`
	ProductionProjects int64            `json:"productionProjects"`
	TotalCustomers     int64            `json:"totalCustomers"`
	RecentProjects     []models.Project `json:"recentProjects"`
}

// GetDashboardStats aggregates project and customer counts plus the five most
// recently updated projects.
func (s *ProjectService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	active, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"status": bson.M{"$ne": models.StatusProduction}})
	if err != nil {
		return nil, fmt.Errorf("failed to count active projects: %v", err)
	}

	production, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"status": models.StatusProduction})
	if err != nil {
		return nil, fmt.Errorf("failed to count production projects: %v", err)
	}

	customers, err := s.CustomersCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}).SetLimit(5)
	cursor, err := s.ProjectsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent projects: %v", err)
	}
	defer cursor.Close(ctx)

	recent := []models.Project{}
	if err := cursor.All(ctx, &recent); err != nil {
		return nil, fmt.Errorf("failed to decode recent projects: %v", err)
	}

	return &DashboardStats{
		ActiveProjects:     active,
		ProductionProjects: production,
		TotalCustomers:     customers,
		RecentProjects:     recent,
	}, nil
}
