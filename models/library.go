package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductCategory string

const (
	CategoryStorm      ProductCategory = "storm"
	CategorySanitary   ProductCategory = "sanitary"
	CategoryElectrical ProductCategory = "electrical"
	CategoryMeter      ProductCategory = "meter"
	CategoryRebar      ProductCategory = "rebar"
	CategoryCAD        ProductCategory = "cad"
)

func ValidProductCategory(c ProductCategory) bool {
	switch c {
	case CategoryStorm, CategorySanitary, CategoryElectrical, CategoryMeter, CategoryRebar, CategoryCAD:
		return true
	}
	return false
}

type Dimensions struct {
	Length        float64 `json:"length" bson:"length"`
	Width         float64 `json:"width" bson:"width"`
	Height        float64 `json:"height" bson:"height"`
	WallThickness float64 `json:"wallThickness,omitempty" bson:"wallThickness,omitempty"`
}

type LoadRequirements struct {
	DesignLoad string `json:"designLoad,omitempty" bson:"designLoad,omitempty"`
	SoilCover  string `json:"soilCover,omitempty" bson:"soilCover,omitempty"`
	WaterTable string `json:"waterTable,omitempty" bson:"waterTable,omitempty"`
}

type AutocadTemplate struct {
	FileName string `json:"fileName,omitempty" bson:"fileName,omitempty"`
	FilePath string `json:"filePath,omitempty" bson:"filePath,omitempty"`
	Version  int    `json:"version,omitempty" bson:"version,omitempty"`
}

type TemplateImage struct {
	URL     string `json:"url,omitempty" bson:"url,omitempty"`
	Caption string `json:"caption,omitempty" bson:"caption,omitempty"`
}

type LibraryTemplate struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TemplateName     string             `json:"templateName" bson:"templateName"`
	ProductCategory  ProductCategory    `json:"productCategory" bson:"productCategory"`
	Dimensions       Dimensions         `json:"dimensions" bson:"dimensions"`
	LoadRequirements LoadRequirements   `json:"loadRequirements,omitempty" bson:"loadRequirements,omitempty"`
	RebarSchedule    string             `json:"rebarSchedule,omitempty" bson:"rebarSchedule,omitempty"`
	AutocadTemplate  AutocadTemplate    `json:"autocadTemplate,omitempty" bson:"autocadTemplate,omitempty"`
	Images           []TemplateImage    `json:"images,omitempty" bson:"images,omitempty"`
	Notes            string             `json:"notes,omitempty" bson:"notes,omitempty"`
	IsActive         bool               `json:"isActive" bson:"isActive"`
	UsageCount       int                `json:"usageCount" bson:"usageCount"`
	LastUsed         *time.Time         `json:"lastUsed,omitempty" bson:"lastUsed,omitempty"`
	CreatedBy        primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}
