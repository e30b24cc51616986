package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	StatusRequested  ProjectStatus = "requested"
	StatusInProgress ProjectStatus = "inprogress"
	StatusReview     ProjectStatus = "review"
	StatusApproved   ProjectStatus = "approved"
	StatusProduction ProjectStatus = "production"
)

// ValidStatus reports whether s is one of the known project statuses.
func ValidStatus(s ProjectStatus) bool {
	switch s {
	case StatusRequested, StatusInProgress, StatusReview, StatusApproved, StatusProduction:
		return true
	}
	return false
}

type ProductType string

const (
	ProductStorm      ProductType = "storm"
	ProductSanitary   ProductType = "sanitary"
	ProductElectrical ProductType = "electrical"
	ProductMeter      ProductType = "meter"
)

func ValidProductType(t ProductType) bool {
	switch t {
	case ProductStorm, ProductSanitary, ProductElectrical, ProductMeter:
		return true
	}
	return false
}

type StructureType string

const (
	StructureSSMH          StructureType = "SSMH"
	StructureSDMH          StructureType = "SDMH"
	StructureInlets        StructureType = "Inlets"
	StructureVaults        StructureType = "Vaults"
	StructureMeterPits     StructureType = "Meter Pits"
	StructureAirVacuumPits StructureType = "Air Vacuum Pits"
)

func ValidStructureType(t StructureType) bool {
	switch t {
	case StructureSSMH, StructureSDMH, StructureInlets, StructureVaults, StructureMeterPits, StructureAirVacuumPits:
		return true
	}
	return false
}

type Structure struct {
	Type       StructureType `json:"type" bson:"type"`
	CustomName string        `json:"customName,omitempty" bson:"customName,omitempty"`
}

type Specifications struct {
	Length        float64 `json:"length" bson:"length"`
	Width         float64 `json:"width" bson:"width"`
	Height        float64 `json:"height" bson:"height"`
	WallThickness float64 `json:"wallThickness,omitempty" bson:"wallThickness,omitempty"`
	CustomNotes   string  `json:"customNotes,omitempty" bson:"customNotes,omitempty"`
}

// TimeEntry is a single work interval on a project. At most one entry per
// user may have IsRunning set at any time within the same project.
type TimeEntry struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	StartTime time.Time          `json:"startTime" bson:"startTime"`
	EndTime   *time.Time         `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Duration  int                `json:"duration" bson:"duration"` // minutes
	Notes     string             `json:"notes,omitempty" bson:"notes,omitempty"`
	IsRunning bool               `json:"isRunning" bson:"isRunning"`
}

type TimeTracking struct {
	TotalHours float64     `json:"totalHours" bson:"totalHours"`
	Entries    []TimeEntry `json:"entries" bson:"entries"`
}

type Drawing struct {
	FileName   string             `json:"fileName" bson:"fileName"`
	FileURL    string             `json:"fileUrl" bson:"fileUrl"`
	FileSize   int64              `json:"fileSize" bson:"fileSize"`
	Version    int                `json:"version" bson:"version"`
	UploadedBy primitive.ObjectID `json:"uploadedBy" bson:"uploadedBy"`
	UploadedAt time.Time          `json:"uploadedAt" bson:"uploadedAt"`
	MimeType   string             `json:"mimeType" bson:"mimeType"`
}

type Revision struct {
	RevisionNumber int                `json:"revisionNumber" bson:"revisionNumber"`
	Date           time.Time          `json:"date" bson:"date"`
	Description    string             `json:"description" bson:"description"`
	RequestedBy    string             `json:"requestedBy" bson:"requestedBy"`
	CompletedBy    primitive.ObjectID `json:"completedBy,omitempty" bson:"completedBy,omitempty"`
}

type RFIStatus string

const (
	RFIOpen     RFIStatus = "open"
	RFIAnswered RFIStatus = "answered"
)

type RFI struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	Question   string             `json:"question" bson:"question"`
	AskedBy    primitive.ObjectID `json:"askedBy" bson:"askedBy"`
	AskedAt    time.Time          `json:"askedAt" bson:"askedAt"`
	Answer     string             `json:"answer,omitempty" bson:"answer,omitempty"`
	AnsweredBy primitive.ObjectID `json:"answeredBy,omitempty" bson:"answeredBy,omitempty"`
	AnsweredAt *time.Time         `json:"answeredAt,omitempty" bson:"answeredAt,omitempty"`
	Status     RFIStatus          `json:"status" bson:"status"`
}

// ProductionChecklist holds the five confirmations gating a production handoff.
type ProductionChecklist struct {
	DrawingsFinalized        bool `json:"drawingsFinalized" bson:"drawingsFinalized"`
	SpecificationsVerified   bool `json:"specificationsVerified" bson:"specificationsVerified"`
	CustomerApprovalReceived bool `json:"customerApprovalReceived" bson:"customerApprovalReceived"`
	MaterialListConfirmed    bool `json:"materialListConfirmed" bson:"materialListConfirmed"`
	ProductionNotesAdded     bool `json:"productionNotesAdded" bson:"productionNotesAdded"`
}

// Complete reports whether every checklist item has been confirmed.
func (c ProductionChecklist) Complete() bool {
	return c.DrawingsFinalized &&
		c.SpecificationsVerified &&
		c.CustomerApprovalReceived &&
		c.MaterialListConfirmed &&
		c.ProductionNotesAdded
}

type ProductionHandoff struct {
	SentToProduction bool                `json:"sentToProduction" bson:"sentToProduction"`
	HandoffDate      *time.Time          `json:"handoffDate,omitempty" bson:"handoffDate,omitempty"`
	Checklist        ProductionChecklist `json:"checklist" bson:"checklist"`
	RFIs             []RFI               `json:"rfis" bson:"rfis"`
}

type Project struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectNumber string             `json:"projectNumber" bson:"projectNumber"`
	ProjectName   string             `json:"projectName,omitempty" bson:"projectName,omitempty"`
	CustomerID    primitive.ObjectID `json:"customerId" bson:"customerId"`
	// CustomerName is copied from the customer at creation time and is not
	// re-synced if the customer is later renamed.
	CustomerName      string             `json:"customerName" bson:"customerName"`
	StartDate         *time.Time         `json:"startDate,omitempty" bson:"startDate,omitempty"`
	Structures        []Structure        `json:"structures" bson:"structures"`
	ProductType       ProductType        `json:"productType" bson:"productType"`
	Status            ProjectStatus      `json:"status" bson:"status"`
	Specifications    Specifications     `json:"specifications" bson:"specifications"`
	Drawings          []Drawing          `json:"drawings" bson:"drawings"`
	TimeTracking      TimeTracking       `json:"timeTracking" bson:"timeTracking"`
	Revisions         []Revision         `json:"revisions" bson:"revisions"`
	ProductionHandoff ProductionHandoff  `json:"productionHandoff" bson:"productionHandoff"`
	CreatedBy         primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	AssignedTo        primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	CompletedAt       *time.Time         `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}
