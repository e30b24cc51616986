package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lindsay-precast/backend/design-service/logging"
	"lindsay-precast/backend/design-service/models"
)

type ProjectService struct {
	ProjectsCollection  *mongo.Collection
	CustomersCollection *mongo.Collection
	CustomerBreaker     *gobreaker.CircuitBreaker
	Now                 func() time.Time
}

// NewProjectService initializes a new ProjectService with the necessary MongoDB
// collections and the circuit breaker guarding customer counter writes.
func NewProjectService(projectsCollection, customersCollection *mongo.Collection, customerBreaker *gobreaker.CircuitBreaker) *ProjectService {
	return &ProjectService{
		ProjectsCollection:  projectsCollection,
		CustomersCollection: customersCollection,
		CustomerBreaker:     customerBreaker,
		Now:                 time.Now,
	}
}

type CreateProjectInput struct {
	CustomerID     string                `json:"customerId"`
	ProjectNumber  string                `json:"projectNumber,omitempty"`
	ProjectName    string                `json:"projectName,omitempty"`
	StartDate      *time.Time            `json:"startDate,omitempty"`
	ProductType    models.ProductType    `json:"productType"`
	Structures     []models.Structure    `json:"structures,omitempty"`
	Specifications models.Specifications `json:"specifications"`
}

// validateCreateProject collects every invalid field instead of stopping at the
// first one.
func validateCreateProject(in CreateProjectInput) []FieldError {
	var fields []FieldError
	if in.CustomerID == "" {
		fields = append(fields, FieldError{Field: "customerId", Message: "Customer is required"})
	} else if _, err := primitive.ObjectIDFromHex(in.CustomerID); err != nil {
		fields = append(fields, FieldError{Field: "customerId", Message: "Invalid customer ID format"})
	}
	if !models.ValidProductType(in.ProductType) {
		fields = append(fields, FieldError{Field: "productType", Message: "Product type must be one of storm, sanitary, electrical, meter"})
	}
	if in.Specifications.Length <= 0 {
		fields = append(fields, FieldError{Field: "specifications.length", Message: "Length must be positive"})
	}
	if in.Specifications.Width <= 0 {
		fields = append(fields, FieldError{Field: "specifications.width", Message: "Width must be positive"})
	}
	if in.Specifications.Height <= 0 {
		fields = append(fields, FieldError{Field: "specifications.height", Message: "Height must be positive"})
	}
	if in.Specifications.WallThickness < 0 {
		fields = append(fields, FieldError{Field: "specifications.wallThickness", Message: "Wall thickness must be positive"})
	}
	for i, st := range in.Structures {
		if !models.ValidStructureType(st.Type) {
			fields = append(fields, FieldError{Field: fmt.Sprintf("structures.%d.type", i), Message: "Unknown structure type"})
		}
	}
	return fields
}

// CreateProject creates a new project for the customer, allocating a project
// number when the caller did not supply one, and then increments the owning
// customer's history counters.
func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput, createdBy primitive.ObjectID) (*models.Project, error) {
	if fields := validateCreateProject(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	customerID, _ := primitive.ObjectIDFromHex(in.CustomerID)
	var customer models.Customer
	err := s.CustomersCollection.FindOne(ctx, bson.M{"_id": customerID}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "customer"}
		}
		return nil, fmt.Errorf("failed to look up customer: %v", err)
	}

	projectNumber := in.ProjectNumber
	if projectNumber == "" {
		projectNumber, err = s.AllocateProjectNumber(ctx, s.Now().Year())
		if err != nil {
			return nil, err
		}
	}

	now := s.Now()
	project := &models.Project{
		ID:             primitive.NewObjectID(),
		ProjectNumber:  projectNumber,
		ProjectName:    in.ProjectName,
		CustomerID:     customerID,
		CustomerName:   customer.Name,
		StartDate:      in.StartDate,
		Structures:     in.Structures,
		ProductType:    in.ProductType,
		Status:         models.StatusRequested,
		Specifications: in.Specifications,
		Drawings:       []models.Drawing{},
		TimeTracking:   models.TimeTracking{TotalHours: 0, Entries: []models.TimeEntry{}},
		Revisions:      []models.Revision{},
		ProductionHandoff: models.ProductionHandoff{
			SentToProduction: false,
			Checklist:        models.ProductionChecklist{},
			RFIs:             []models.RFI{},
		},
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if project.Structures == nil {
		project.Structures = []models.Structure{}
	}

	if _, err := s.ProjectsCollection.InsertOne(ctx, project); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, s.duplicateNumberConflict(ctx, projectNumber)
		}
		return nil, fmt.Errorf("failed to create project: %v", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created for customer %s", project.ProjectNumber, customer.Name)

	// Best-effort reconciliation of the customer's history counters. The
	// project write is already committed; a failure here is reported, not
	// rolled back.
	update := bson.M{
		"$inc": bson.M{
			"projectHistory.totalProjects":  1,
			"projectHistory.activeProjects": 1,
		},
		"$push": recentProjectsPush(project.ID),
	}
	s.updateCustomerHistory(ctx, bson.M{"_id": customerID}, update, "PROJECT_CREATE")

	return project, nil
}

// recentProjectsPush builds the $push clause that prepends the project onto
// the customer's recent-ids list and truncates it to the five newest.
func recentProjectsPush(projectID primitive.ObjectID) bson.M {
	return bson.M{
		"projectHistory.recentProjectIds": bson.M{
			"$each":     []primitive.ObjectID{projectID},
			"$position": 0,
			"$slice":    5,
		},
	}
}

// duplicateNumberConflict looks up the project already holding the number so
// the caller can show which one it collided with.
func (s *ProjectService) duplicateNumberConflict(ctx context.Context, projectNumber string) error {
	conflict := &ConflictError{Message: fmt.Sprintf("Project number %q is already taken", projectNumber)}
	var existing models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"projectNumber": projectNumber}).Decode(&existing); err == nil {
		conflict.Existing = &ProjectRef{
			ID:            existing.ID.Hex(),
			ProjectNumber: existing.ProjectNumber,
			ProjectName:   existing.ProjectName,
			CustomerName:  existing.CustomerName,
		}
	} else {
		logging.Logger.Warnf("Event ID: CONFLICT_LOOKUP_FAILED, Description: Could not load existing project for duplicate number %s: %v", projectNumber, err)
	}
	return conflict
}

// updateCustomerHistory applies a counter update through the circuit breaker.
// Failures are logged and swallowed; counter maintenance is best-effort.
func (s *ProjectService) updateCustomerHistory(ctx context.Context, filter, update bson.M, operation string) {
	_, err := s.CustomerBreaker.Execute(func() (interface{}, error) {
		return s.CustomersCollection.UpdateOne(ctx, filter, update)
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: CUSTOMER_HISTORY_UPDATE_FAILED, Description: Counter reconciliation after %s failed: %v", operation, err)
	}
}

// incrementActiveProjects adjusts the customer's activeProjects counter by
// delta. Decrements are conditional on the counter being positive so it never
// goes below zero.
func (s *ProjectService) incrementActiveProjects(ctx context.Context, customerID primitive.ObjectID, delta int, operation string) {
	if delta == 0 {
		return
	}
	filter := bson.M{"_id": customerID}
	if delta < 0 {
		filter["projectHistory.activeProjects"] = bson.M{"$gt": 0}
	}
	s.updateCustomerHistory(ctx, filter, bson.M{"$inc": bson.M{"projectHistory.activeProjects": delta}}, operation)
}

// activeProjectsDelta is the adjustment to a customer's activeProjects counter
// when one of its projects moves between statuses. Only the edges into and out
// of production matter.
func activeProjectsDelta(oldStatus, newStatus models.ProjectStatus) int {
	switch {
	case oldStatus != models.StatusProduction && newStatus == models.StatusProduction:
		return -1
	case oldStatus == models.StatusProduction && newStatus != models.StatusProduction:
		return 1
	}
	return 0
}

// clearsHandoff reports whether the status change leaves production, which
// resets the project's handoff flag and date.
func clearsHandoff(oldStatus, newStatus models.ProjectStatus) bool {
	return oldStatus == models.StatusProduction && newStatus != models.StatusProduction
}

// statusChangeUpdate builds the update document applied on a status change.
func statusChangeUpdate(oldStatus, newStatus models.ProjectStatus, now time.Time) bson.M {
	set := bson.M{"status": newStatus, "updatedAt": now}
	update := bson.M{"$set": set}
	if clearsHandoff(oldStatus, newStatus) {
		set["productionHandoff.sentToProduction"] = false
		update["$unset"] = bson.M{"productionHandoff.handoffDate": ""}
	}
	return update
}

// SetProjectStatus assigns a new status. Statuses are free-form assignable;
// the single attached side effect is that leaving production clears the
// handoff flag and date.
func (s *ProjectService) SetProjectStatus(ctx context.Context, projectID string, newStatus models.ProjectStatus) (*models.Project, error) {
	if !models.ValidStatus(newStatus) {
		return nil, &ValidationError{Fields: []FieldError{{Field: "status", Message: "Unknown status"}}}
	}

	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid project ID format"}}}
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "project"}
		}
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}

	now := s.Now()
	update := statusChangeUpdate(project.Status, newStatus, now)

	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update); err != nil {
		return nil, fmt.Errorf("failed to update project status: %v", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_STATUS_CHANGED, Description: Project %s status %s -> %s", project.ProjectNumber, project.Status, newStatus)

	s.incrementActiveProjects(ctx, project.CustomerID, activeProjectsDelta(project.Status, newStatus), "STATUS_CHANGE")

	if clearsHandoff(project.Status, newStatus) {
		project.ProductionHandoff.SentToProduction = false
		project.ProductionHandoff.HandoffDate = nil
	}
	project.Status = newStatus
	project.UpdatedAt = now
	return &project, nil
}

// SendToProduction marks the project handed off to manufacturing. All five
// checklist items must be confirmed first. Resubmitting is allowed and simply
// overwrites the handoff date.
func (s *ProjectService) SendToProduction(ctx context.Context, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid project ID format"}}}
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "project"}
		}
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}

	if !project.ProductionHandoff.Checklist.Complete() {
		return nil, &PreconditionError{Message: "Production checklist is not complete"}
	}

	now := s.Now()
	update := bson.M{"$set": bson.M{
		"status":                             models.StatusProduction,
		"productionHandoff.sentToProduction": true,
		"productionHandoff.handoffDate":      now,
		"updatedAt":                          now,
	}}
	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update); err != nil {
		return nil, fmt.Errorf("failed to send project to production: %v", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_SENT_TO_PRODUCTION, Description: Project %s sent to production", project.ProjectNumber)

	s.incrementActiveProjects(ctx, project.CustomerID, activeProjectsDelta(project.Status, models.StatusProduction), "SEND_TO_PRODUCTION")

	project.Status = models.StatusProduction
	project.ProductionHandoff.SentToProduction = true
	project.ProductionHandoff.HandoffDate = &now
	project.UpdatedAt = now
	return &project, nil
}

// DeleteProject removes the project and reverses its contribution to the
// owning customer's counters.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid project ID format"}}}
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return &NotFoundError{Resource: "project"}
		}
		return fmt.Errorf("failed to fetch project: %v", err)
	}

	s.updateCustomerHistory(ctx,
		bson.M{"_id": project.CustomerID, "projectHistory.totalProjects": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"projectHistory.totalProjects": -1}},
		"PROJECT_DELETE")
	if project.Status != models.StatusProduction {
		s.incrementActiveProjects(ctx, project.CustomerID, -1, "PROJECT_DELETE")
	}
	s.updateCustomerHistory(ctx,
		bson.M{"_id": project.CustomerID},
		bson.M{"$pull": bson.M{"projectHistory.recentProjectIds": project.ID}},
		"PROJECT_DELETE")

	if _, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted", project.ProjectNumber)
	return nil
}

// immutableProjectPaths are update paths UpdateProject refuses to touch. The
// project number and customer reference are natural keys fixed at creation.
var immutableProjectPaths = map[string]bool{
	"_id":           true,
	"id":            true,
	"projectNumber": true,
	"customerId":    true,
	"createdAt":     true,
	"createdBy":     true,
	"updatedAt":     true,
}

type ProjectUpdateResult struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateProject applies a partial update of dotted field paths, e.g.
// "productionHandoff.checklist.drawingsFinalized". Status changes must go
// through SetProjectStatus so the production side effects are applied.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, changes map[string]interface{}) (*ProjectUpdateResult, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid project ID format"}}}
	}

	var fields []FieldError
	set := bson.M{}
	for path, value := range changes {
		if immutableProjectPaths[path] {
			fields = append(fields, FieldError{Field: path, Message: "Field is immutable"})
			continue
		}
		if path == "status" {
			fields = append(fields, FieldError{Field: "status", Message: "Use the status endpoint to change status"})
			continue
		}
		if path == "startDate" {
			if str, ok := value.(string); ok {
				parsed, err := time.Parse(time.RFC3339, str)
				if err != nil {
					fields = append(fields, FieldError{Field: "startDate", Message: "Invalid date format"})
					continue
				}
				value = parsed
			}
		}
		set[path] = value
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	now := s.Now()
	set["updatedAt"] = now

	result, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, &NotFoundError{Resource: "project"}
	}

	return &ProjectUpdateResult{ID: objectID.Hex(), UpdatedAt: now}, nil
}

type ProjectFilter struct {
	Status     string
	Type       string
	CustomerID string
	Search     string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  int
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// ListProjects returns a filtered, paginated page of projects.
func (s *ProjectService) ListProjects(ctx context.Context, filter ProjectFilter) ([]models.Project, *Pagination, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Type != "" {
		query["productType"] = filter.Type
	}
	if filter.CustomerID != "" {
		customerID, err := primitive.ObjectIDFromHex(filter.CustomerID)
		if err != nil {
			return nil, nil, &ValidationError{Fields: []FieldError{{Field: "customerId", Message: "Invalid customer ID format"}}}
		}
		query["customerId"] = customerID
	}
	if filter.Search != "" {
		regex := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"projectNumber": regex},
			bson.M{"customerName": regex},
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	sortOrder := filter.SortOrder
	if sortOrder != 1 {
		sortOrder = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: sortOrder}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.ProjectsCollection.Find(ctx, query, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve projects: %v", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, nil, fmt.Errorf("failed to decode projects: %v", err)
	}

	total, err := s.ProjectsCollection.CountDocuments(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count projects: %v", err)
	}

	pagination := &Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
	return projects, pagination, nil
}

// GetProjectByID fetches a single project.
func (s *ProjectService) GetProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid project ID format"}}}
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "project"}
		}
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}
	return &project, nil
}

// AddRFI appends an open request-for-information to the production handoff.
func (s *ProjectService) AddRFI(ctx context.Context, projectID, question string, askedBy primitive.ObjectID) (*models.RFI, error) {
	if question == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "question", Message: "Question is required"}}}
	}
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid project ID format"}}}
	}

	rfi := models.RFI{
		ID:       primitive.NewObjectID(),
		Question: question,
		AskedBy:  askedBy,
		AskedAt:  s.Now(),
		Status:   models.RFIOpen,
	}

	result, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$push": bson.M{"productionHandoff.rfis": rfi},
			"$set":  bson.M{"updatedAt": s.Now()},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to add RFI: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, &NotFoundError{Resource: "project"}
	}
	return &rfi, nil
}

// AnswerRFI records an answer on an open RFI and marks it answered.
func (s *ProjectService) AnswerRFI(ctx context.Context, projectID, rfiID, answer string, answeredBy primitive.ObjectID) error {
	if answer == "" {
		return &ValidationError{Fields: []FieldError{{Field: "answer", Message: "Answer is required"}}}
	}
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid project ID format"}}}
	}
	rfiObjectID, err := primitive.ObjectIDFromHex(rfiID)
	if err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "rfiId", Message: "Invalid RFI ID format"}}}
	}

	now := s.Now()
	result, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": objectID, "productionHandoff.rfis._id": rfiObjectID},
		bson.M{"$set": bson.M{
			"productionHandoff.rfis.$.answer":     answer,
			"productionHandoff.rfis.$.answeredBy": answeredBy,
			"productionHandoff.rfis.$.answeredAt": now,
			"productionHandoff.rfis.$.status":     models.RFIAnswered,
			"updatedAt":                           now,
		}})
	if err != nil {
		return fmt.Errorf("failed to answer RFI: %v", err)
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{Resource: "RFI"}
	}
	return nil
}
