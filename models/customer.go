package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
}

type ContactInfo struct {
	Email   string  `json:"email" bson:"email"`
	Phone   string  `json:"phone" bson:"phone"`
	Address Address `json:"address,omitempty" bson:"address,omitempty"`
}

type CustomerPreferences struct {
	CustomSpecs             []string `json:"customSpecs,omitempty" bson:"customSpecs,omitempty"`
	Notes                   string   `json:"notes,omitempty" bson:"notes,omitempty"`
	PreferredProducts       []string `json:"preferredProducts,omitempty" bson:"preferredProducts,omitempty"`
	RequiresStampedDrawings bool     `json:"requiresStampedDrawings" bson:"requiresStampedDrawings"`
	ExpeditedTurnaround     bool     `json:"expeditedTurnaround" bson:"expeditedTurnaround"`
}

// ProjectHistory carries the rolling per-customer counters. TotalProjects and
// ActiveProjects are maintained exclusively as side effects of project
// create/delete/status-change; CompletedThisYear is stored for data-shape
// compatibility but no operation maintains it.
type ProjectHistory struct {
	TotalProjects     int                  `json:"totalProjects" bson:"totalProjects"`
	ActiveProjects    int                  `json:"activeProjects" bson:"activeProjects"`
	CompletedThisYear int                  `json:"completedThisYear" bson:"completedThisYear"`
	RecentProjectIDs  []primitive.ObjectID `json:"recentProjectIds" bson:"recentProjectIds"`
}

type Customer struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string              `json:"name" bson:"name"`
	ContactInfo    ContactInfo         `json:"contactInfo" bson:"contactInfo"`
	Preferences    CustomerPreferences `json:"preferences,omitempty" bson:"preferences,omitempty"`
	ProjectHistory ProjectHistory      `json:"projectHistory" bson:"projectHistory"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}
