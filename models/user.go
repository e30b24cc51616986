package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleDesigner   UserRole = "designer"
	RoleEngineer   UserRole = "engineer"
	RoleManager    UserRole = "manager"
	RoleProduction UserRole = "production"
)

func ValidRole(r UserRole) bool {
	switch r {
	case RoleDesigner, RoleEngineer, RoleManager, RoleProduction:
		return true
	}
	return false
}

type UserPreferences struct {
	EmailNotifications      bool `json:"emailNotifications" bson:"emailNotifications"`
	ProductionNotifications bool `json:"productionNotifications" bson:"productionNotifications"`
	WeeklyReports           bool `json:"weeklyReports" bson:"weeklyReports"`
}

type User struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"-" bson:"password"`
	Role        UserRole           `json:"role" bson:"role"`
	Phone       string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar      string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Preferences UserPreferences    `json:"preferences" bson:"preferences"`
	LastLogin   *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
