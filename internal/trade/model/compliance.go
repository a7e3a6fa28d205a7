package model

// ComplianceStatus tracks a user's progress on a requirement.
type ComplianceStatus string

const (
	ComplianceStatusPending    ComplianceStatus = "PENDING"
	ComplianceStatusInProgress ComplianceStatus = "IN_PROGRESS"
	ComplianceStatusCompleted  ComplianceStatus = "COMPLETED"
	ComplianceStatusNotNeeded  ComplianceStatus = "NOT_APPLICABLE"
)

// ComplianceRequirement is a regulatory step (licence, certificate, registration) a user
// tracks for an HS code on a destination market.
type ComplianceRequirement struct {
	BaseModel
	UserID      string           `gorm:"type:varchar(100);column:user_id;not null;index" json:"userId"`
	HSCode      string           `gorm:"type:varchar(50);column:hs_code" json:"hsCode,omitempty"`
	Country     string           `gorm:"type:varchar(2);column:country;not null" json:"country"`
	Title       string           `gorm:"type:varchar(255);column:title;not null" json:"title"`
	Description string           `gorm:"type:text;column:description" json:"description,omitempty"`
	Authority   string           `gorm:"type:varchar(255);column:authority" json:"authority,omitempty"`
	Mandatory   bool             `gorm:"column:mandatory;not null" json:"mandatory"`
	Status      ComplianceStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`
}

func (c *ComplianceRequirement) TableName() string {
	return "compliance_requirements"
}

// ComplianceRequirementDTO is the request body for creating or replacing a requirement.
type ComplianceRequirementDTO struct {
	HSCode      string           `json:"hsCode" binding:"max=50"`
	Country     string           `json:"country" binding:"required,iso3166_1_alpha2"`
	Title       string           `json:"title" binding:"required,max=255"`
	Description string           `json:"description"`
	Authority   string           `json:"authority" binding:"max=255"`
	Mandatory   *bool            `json:"mandatory"`
	Status      ComplianceStatus `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED NOT_APPLICABLE"`
}

// Apply copies the DTO onto c. Mandatory defaults to true and Status to PENDING.
func (d *ComplianceRequirementDTO) Apply(c *ComplianceRequirement) {
	c.HSCode = d.HSCode
	c.Country = d.Country
	c.Title = d.Title
	c.Description = d.Description
	c.Authority = d.Authority
	c.Mandatory = true
	if d.Mandatory != nil {
		c.Mandatory = *d.Mandatory
	}
	c.Status = d.Status
	if c.Status == "" {
		c.Status = ComplianceStatusPending
	}
}

// ComplianceFilter narrows a compliance listing.
type ComplianceFilter struct {
	HSCode  *string `json:"hsCode,omitempty"`
	Country *string `json:"country,omitempty"`
	ListFilter
}

// ComplianceListResult represents the result of querying requirements with pagination
type ComplianceListResult struct {
	TotalCount   int64                   `json:"totalCount"`
	Requirements []ComplianceRequirement `json:"requirements"`
	Offset       int                     `json:"offset"`
	Limit        int                     `json:"limit"`
}
