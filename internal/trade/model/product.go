package model

import (
	"github.com/OpenNSW/landedcost/internal/estimator"
)

// Product is a catalogue item owned by a user. Analyses may reference it.
// Weight (kg) and Dimensions are per unit.
type Product struct {
	BaseModel
	UserID      string               `gorm:"type:varchar(100);column:user_id;not null;index" json:"userId"`
	Name        string               `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Description string               `gorm:"type:text;column:description" json:"description,omitempty"`
	Category    string               `gorm:"type:varchar(100);column:category" json:"category,omitempty"`
	HSCode      string               `gorm:"type:varchar(50);column:hs_code" json:"hsCode,omitempty"`
	UnitPrice   float64              `gorm:"column:unit_price;not null" json:"unitPrice"`
	Weight      float64              `gorm:"column:weight;not null" json:"weight"`
	Dimensions  estimator.Dimensions `gorm:"type:jsonb;column:dimensions;serializer:json" json:"dimensions"`
}

func (p *Product) TableName() string {
	return "products"
}

// ProductDTO is the request body for creating or replacing a product.
type ProductDTO struct {
	Name        string        `json:"name" binding:"required,max=255"`
	Description string        `json:"description"`
	Category    string        `json:"category" binding:"max=100"`
	HSCode      string        `json:"hsCode" binding:"max=50"`
	UnitPrice   float64       `json:"unitPrice" binding:"gte=0"`
	Weight      float64       `json:"weight" binding:"gte=0"`
	Dimensions  DimensionsDTO `json:"dimensions"`
}

// Apply copies the DTO onto p.
func (d *ProductDTO) Apply(p *Product) {
	p.Name = d.Name
	p.Description = d.Description
	p.Category = d.Category
	p.HSCode = d.HSCode
	p.UnitPrice = d.UnitPrice
	p.Weight = d.Weight
	p.Dimensions = d.Dimensions.ToDimensions()
}

// ProductListResult represents the result of querying products with pagination
type ProductListResult struct {
	TotalCount int64     `json:"totalCount"`
	Products   []Product `json:"products"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}
