package model

// HSCode is a Harmonized System heading mapped onto a rate table category.
type HSCode struct {
	BaseModel
	HSCode      string `gorm:"type:varchar(50);column:hs_code;not null;unique" json:"hsCode"`
	Description string `gorm:"type:text;column:description" json:"description"`
	// Category names a rate table duty category, e.g. electronics.
	Category string `gorm:"type:text;column:category;index" json:"category"`
}

func (h *HSCode) TableName() string {
	return "hs_codes"
}

// HSCodeFilter narrows an HS code listing by code prefix and category.
type HSCodeFilter struct {
	ListFilter
	HSCodeStartsWith *string `json:"hsCodeStartsWith,omitempty"`
	Category         *string `json:"category,omitempty"`
}

type HSCodeListResult struct {
	TotalCount int64    `json:"totalCount"`
	HSCodes    []HSCode `json:"hsCodes"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
}
