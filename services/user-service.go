package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"lindsay-precast/backend/design-service/logging"
	"lindsay-precast/backend/design-service/models"
	"lindsay-precast/backend/design-service/utils"
)

type UserService struct {
	UsersCollection *mongo.Collection
	Now             func() time.Time
}

func NewUserService(usersCollection *mongo.Collection) *UserService {
	return &UserService{
		UsersCollection: usersCollection,
		Now:             time.Now,
	}
}

type RegisterInput struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	Phone    string          `json:"phone,omitempty"`
}

func validateRegister(in RegisterInput) []FieldError {
	var fields []FieldError
	if len(in.Name) < 2 {
		fields = append(fields, FieldError{Field: "name", Message: "Name must be at least 2 characters"})
	}
	if !emailPattern.MatchString(in.Email) {
		fields = append(fields, FieldError{Field: "email", Message: "Invalid email address"})
	}
	if len(in.Password) < 6 {
		fields = append(fields, FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if !models.ValidRole(in.Role) {
		fields = append(fields, FieldError{Field: "role", Message: "Role must be one of designer, engineer, manager, production"})
	}
	return fields
}

// RegisterUser creates an account with a bcrypt-hashed password.
func (s *UserService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	if fields := validateRegister(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	email := strings.ToLower(in.Email)

	var existing models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&existing); err == nil {
		return nil, &ConflictError{Message: "User with this email already exists"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := s.Now()
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     in.Name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     in.Role,
		Phone:    in.Phone,
		Preferences: models.UserPreferences{
			EmailNotifications:      true,
			ProductionNotifications: true,
			WeeklyReports:           false,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.UsersCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &ConflictError{Message: "User with this email already exists"}
		}
		return nil, fmt.Errorf("failed to save user: %v", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered with role %s", user.Email, user.Role)
	return user, nil
}

// Login verifies credentials and issues a signed token. lastLogin is recorded
// on success.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(email)

	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil, &NotFoundError{Resource: "user"}
		}
		return "", nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, &PreconditionError{Message: "Invalid credentials"}
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %v", err)
	}

	now := s.Now()
	if _, err := s.UsersCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"lastLogin": now}}); err != nil {
		logging.Logger.Warnf("Event ID: LAST_LOGIN_UPDATE_FAILED, Description: Could not record last login for %s: %v", user.Email, err)
	}
	user.LastLogin = &now

	logging.Logger.Infof("Event ID: USER_LOGIN, Description: User %s logged in", user.Email)
	return token, &user, nil
}

// GetUserByID fetches a user profile.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid user ID format"}}}
	}

	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	return &user, nil
}

// UpdateProfile changes the caller's own name, phone, avatar or notification
// preferences. Email and role are fixed through this path.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, changes map[string]interface{}) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "Invalid user ID format"}}}
	}

	allowed := map[string]bool{
		"name":                                true,
		"phone":                               true,
		"avatar":                              true,
		"preferences.emailNotifications":      true,
		"preferences.productionNotifications": true,
		"preferences.weeklyReports":           true,
	}

	var fields []FieldError
	set := bson.M{}
	for path, value := range changes {
		if !allowed[path] {
			fields = append(fields, FieldError{Field: path, Message: "Field cannot be changed through profile update"})
			continue
		}
		set[path] = value
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	set["updatedAt"] = s.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = s.UsersCollection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to update profile: %v", err)
	}
	return &user, nil
}
