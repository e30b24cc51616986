package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lindsay-precast/backend/design-service/logging"
	"lindsay-precast/backend/design-service/models"
)

type CustomerService struct {
	CustomersCollection *mongo.Collection
	Now                 func() time.Time
}

func NewCustomerService(customersCollection *mongo.Collection) *CustomerService {
	return &CustomerService{
		CustomersCollection: customersCollection,
		Now:                 time.Now,
	}
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}$`)
)

type CreateCustomerInput struct {
	Name        string                     `json:"name"`
	ContactInfo models.ContactInfo         `json:"contactInfo"`
	Preferences models.CustomerPreferences `json:"preferences,omitempty"`
}

func validateCustomer(in CreateCustomerInput) []FieldError {
	var fields []FieldError
	if len(in.Name) < 2 {
		fields = append(fields, FieldError{Field: "name", Message: "Name must be at least 2 characters"})
	}
	if !emailPattern.MatchString(in.ContactInfo.Email) {
		fields = append(fields, FieldError{Field: "contactInfo.email", Message: "Invalid email address"})
	}
	if !phonePattern.MatchString(in.ContactInfo.Phone) {
		fields = append(fields, FieldError{Field: "contactInfo.phone", Message: "Invalid phone format (xxx) xxx-xxxx"})
	}
	if addr := in.ContactInfo.Address; addr.State != "" && len(addr.State) != 2 {
		fields = append(fields, FieldError{Field: "contactInfo.address.state", Message: "State must be 2 characters"})
	}
	if addr := in.ContactInfo.Address; addr.ZipCode != "" && !zipPattern.MatchString(addr.ZipCode) {
		fields = append(fields, FieldError{Field: "contactInfo.address.zipCode", Message: "Invalid zip code"})
	}
	return fields
}

// CreateCustomer registers a new customer with zeroed project history. Emails
// are stored lowercase and must be unique.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	if fields := validateCustomer(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	email := strings.ToLower(in.ContactInfo.Email)

	var existing models.Customer
	if err := s.CustomersCollection.FindOne(ctx, bson.M{"contactInfo.email": email}).Decode(&existing); err == nil {
		return nil, &ConflictError{Message: "Customer with this email already exists"}
	}

	now := s.Now()
	customer := &models.Customer{
		ID:   primitive.NewObjectID(),
		Name: in.Name,
		ContactInfo: models.ContactInfo{
			Email:   email,
			Phone:   in.ContactInfo.Phone,
			Address: in.ContactInfo.Address,
		},
		Preferences: in.Preferences,
		ProjectHistory: models.ProjectHistory{
			TotalProjects:     0,
			ActiveProjects:    0,
			CompletedThisYear: 0,
			RecentProjectIDs:  []primitive.ObjectID{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.CustomersCollection.InsertOne(ctx, customer); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &ConflictError{Message: "Customer with this email already exists"}
		}
		return nil, fmt.Errorf("failed to create customer: %v", err)
	}

	logging.Logger.Infof("Event ID: CUSTOMER_CREATED, Description: Customer %s created", customer.Name)
	return customer, nil
}

// UpdateCustomer applies a partial update. The projectHistory counters are not
// directly editable; they move only as a side effect of project lifecycle
// operations.
func (s *CustomerService) UpdateCustomer(ctx context.Context, customerID string, changes map[string]interface{}) (*models.Customer, error) {
	objectID, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid customer ID format"}}}
	}

	var fields []FieldError
	set := bson.M{}
	for path, value := range changes {
		if path == "_id" || path == "id" || path == "createdAt" || path == "updatedAt" ||
			path == "projectHistory" || strings.HasPrefix(path, "projectHistory.") {
			fields = append(fields, FieldError{Field: path, Message: "Field is immutable"})
			continue
		}
		if path == "contactInfo.email" {
			if str, ok := value.(string); ok {
				lowered := strings.ToLower(str)
				if !emailPattern.MatchString(lowered) {
					fields = append(fields, FieldError{Field: path, Message: "Invalid email address"})
					continue
				}
				value = lowered
			}
		}
		set[path] = value
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	set["updatedAt"] = s.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var customer models.Customer
	err = s.CustomersCollection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "customer"}
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, &ConflictError{Message: "Customer with this email already exists"}
		}
		return nil, fmt.Errorf("failed to update customer: %v", err)
	}
	return &customer, nil
}

// DeleteCustomer removes the customer record.
func (s *CustomerService) DeleteCustomer(ctx context.Context, customerID string) error {
	objectID, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid customer ID format"}}}
	}

	result, err := s.CustomersCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete customer: %v", err)
	}
	if result.DeletedCount == 0 {
		return &NotFoundError{Resource: "customer"}
	}

	logging.Logger.Infof("Event ID: CUSTOMER_DELETED, Description: Customer %s deleted", customerID)
	return nil
}

// GetCustomerByID fetches a single customer.
func (s *CustomerService) GetCustomerByID(ctx context.Context, customerID string) (*models.Customer, error) {
	objectID, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid customer ID format"}}}
	}

	var customer models.Customer
	if err := s.CustomersCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&customer); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "customer"}
		}
		return nil, fmt.Errorf("failed to fetch customer: %v", err)
	}
	return &customer, nil
}

// ListCustomers returns customers sorted by name, optionally filtered by a
// case-insensitive search over name and email.
func (s *CustomerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]models.Customer, *Pagination, error) {
	query := bson.M{}
	if search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"contactInfo.email": regex},
		}
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.CustomersCollection.Find(ctx, query, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve customers: %v", err)
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, nil, fmt.Errorf("failed to decode customers: %v", err)
	}

	total, err := s.CustomersCollection.CountDocuments(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count customers: %v", err)
	}

	pagination := &Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
	return customers, pagination, nil
}
