package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lindsay-precast/backend/design-service/logging"
	"lindsay-precast/backend/design-service/models"
)

type LibraryService struct {
	LibraryCollection *mongo.Collection
	Now               func() time.Time
}

func NewLibraryService(libraryCollection *mongo.Collection) *LibraryService {
	return &LibraryService{
		LibraryCollection: libraryCollection,
		Now:               time.Now,
	}
}

type CreateTemplateInput struct {
	TemplateName     string                  `json:"templateName"`
	ProductCategory  models.ProductCategory  `json:"productCategory"`
	Dimensions       models.Dimensions       `json:"dimensions"`
	LoadRequirements models.LoadRequirements `json:"loadRequirements,omitempty"`
	RebarSchedule    string                  `json:"rebarSchedule,omitempty"`
	Notes            string                  `json:"notes,omitempty"`
}

func validateTemplate(in CreateTemplateInput) []FieldError {
	var fields []FieldError
	if len(in.TemplateName) < 2 {
		fields = append(fields, FieldError{Field: "templateName", Message: "Template name is required"})
	}
	if !models.ValidProductCategory(in.ProductCategory) {
		fields = append(fields, FieldError{Field: "productCategory", Message: "Unknown product category"})
	}
	if in.Dimensions.Length <= 0 {
		fields = append(fields, FieldError{Field: "dimensions.length", Message: "Length must be positive"})
	}
	if in.Dimensions.Width <= 0 {
		fields = append(fields, FieldError{Field: "dimensions.width", Message: "Width must be positive"})
	}
	if in.Dimensions.Height <= 0 {
		fields = append(fields, FieldError{Field: "dimensions.height", Message: "Height must be positive"})
	}
	return fields
}

// CreateTemplate adds a reusable design template to the library.
func (s *LibraryService) CreateTemplate(ctx context.Context, in CreateTemplateInput, createdBy primitive.ObjectID) (*models.LibraryTemplate, error) {
	if fields := validateTemplate(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	now := s.Now()
	template := &models.LibraryTemplate{
		ID:               primitive.NewObjectID(),
		TemplateName:     in.TemplateName,
		ProductCategory:  in.ProductCategory,
		Dimensions:       in.Dimensions,
		LoadRequirements: in.LoadRequirements,
		RebarSchedule:    in.RebarSchedule,
		Notes:            in.Notes,
		IsActive:         true,
		UsageCount:       0,
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := s.LibraryCollection.InsertOne(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %v", err)
	}

	logging.Logger.Infof("Event ID: TEMPLATE_CREATED, Description: Library template %s created", template.TemplateName)
	return template, nil
}

// ListTemplates returns templates sorted by usage, most used first.
func (s *LibraryService) ListTemplates(ctx context.Context, category string, activeOnly bool) ([]models.LibraryTemplate, error) {
	query := bson.M{}
	if category != "" {
		query["productCategory"] = category
	}
	if activeOnly {
		query["isActive"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "usageCount", Value: -1}})
	cursor, err := s.LibraryCollection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve templates: %v", err)
	}
	defer cursor.Close(ctx)

	templates := []models.LibraryTemplate{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %v", err)
	}
	return templates, nil
}

// GetTemplateByID fetches a single template.
func (s *LibraryService) GetTemplateByID(ctx context.Context, templateID string) (*models.LibraryTemplate, error) {
	objectID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid template ID format"}}}
	}

	var template models.LibraryTemplate
	if err := s.LibraryCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&template); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "template"}
		}
		return nil, fmt.Errorf("failed to fetch template: %v", err)
	}
	return &template, nil
}

// UseTemplate records one use of the template.
func (s *LibraryService) UseTemplate(ctx context.Context, templateID string) (*models.LibraryTemplate, error) {
	objectID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid template ID format"}}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var template models.LibraryTemplate
	err = s.LibraryCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$inc": bson.M{"usageCount": 1},
			"$set": bson.M{"lastUsed": s.Now(), "updatedAt": s.Now()},
		}, opts).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "template"}
		}
		return nil, fmt.Errorf("failed to record template use: %v", err)
	}
	return &template, nil
}

// UpdateTemplate applies a partial update of dotted field paths.
func (s *LibraryService) UpdateTemplate(ctx context.Context, templateID string, changes map[string]interface{}) (*models.LibraryTemplate, error) {
	objectID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid template ID format"}}}
	}

	set := bson.M{}
	for path, value := range changes {
		if path == "_id" || path == "id" || path == "createdAt" || path == "updatedAt" || path == "createdBy" || path == "usageCount" {
			return nil, &ValidationError{Fields: []FieldError{{Field: path, Message: "Field is immutable"}}}
		}
		set[path] = value
	}
	set["updatedAt"] = s.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var template models.LibraryTemplate
	err = s.LibraryCollection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "template"}
		}
		return nil, fmt.Errorf("failed to update template: %v", err)
	}
	return &template, nil
}

// DeactivateTemplate soft deletes a template; it stays in the collection for
// existing references but drops out of active listings.
func (s *LibraryService) DeactivateTemplate(ctx context.Context, templateID string) error {
	objectID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid template ID format"}}}
	}

	result, err := s.LibraryCollection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": s.Now()}})
	if err != nil {
		return fmt.Errorf("failed to deactivate template: %v", err)
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{Resource: "template"}
	}

	logging.Logger.Infof("Event ID: TEMPLATE_DEACTIVATED, Description: Library template %s deactivated", templateID)
	return nil
}
