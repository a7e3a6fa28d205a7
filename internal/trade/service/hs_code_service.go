package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/utils"
)

//go:embed hs_codes.yaml
var seedHSCodesYAML []byte

type seedHSCode struct {
	HSCode      string `yaml:"hsCode"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

type HSCodeService struct {
	db *gorm.DB
}

func NewHSCodeService(db *gorm.DB) *HSCodeService {
	return &HSCodeService{db: db}
}

// GetAllHSCodes lists HS codes ordered by code, optionally filtered by prefix and category.
func (s *HSCodeService) GetAllHSCodes(ctx context.Context, filter model.HSCodeFilter) (*model.HSCodeListResult, error) {
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.HSCode{})
		if filter.HSCodeStartsWith != nil && *filter.HSCodeStartsWith != "" {
			q = q.Where("hs_code LIKE ?", *filter.HSCodeStartsWith+"%")
		}
		if filter.Category != nil && *filter.Category != "" {
			q = q.Where("category = ?", strings.ToLower(*filter.Category))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count HS codes: %w", err)
	}

	page := utils.PageWindow(filter.Offset, filter.Limit)
	hsCodes := make([]model.HSCode, 0)
	if err := base().Order("hs_code ASC").Scopes(page.Scope).Find(&hsCodes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve HS codes: %w", err)
	}

	return &model.HSCodeListResult{
		TotalCount: total,
		HSCodes:    hsCodes,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}, nil
}

// GetByCode returns the row for an exact HS code.
func (s *HSCodeService) GetByCode(ctx context.Context, code string) (*model.HSCode, error) {
	var hsCode model.HSCode
	if err := s.db.WithContext(ctx).Where("hs_code = ?", strings.TrimSpace(code)).First(&hsCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("hs code %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve hs code %s: %w", code, err)
	}
	return &hsCode, nil
}

// CategoryFor returns the rate table category of the most specific known classification
// of code: the code itself, then its heading and chapter.
func (s *HSCodeService) CategoryFor(ctx context.Context, code string) (string, error) {
	candidates := classificationPrefixes(code)
	if len(candidates) == 0 {
		return "", fmt.Errorf("hs code %q: %w", code, ErrNotFound)
	}

	var matches []model.HSCode
	if err := s.db.WithContext(ctx).Where("hs_code IN ?", candidates).Find(&matches).Error; err != nil {
		return "", fmt.Errorf("failed to classify hs code %s: %w", code, err)
	}

	best := ""
	for _, m := range matches {
		if m.Category != "" && len(m.HSCode) > len(best) {
			best = m.HSCode
		}
	}
	for _, m := range matches {
		if m.HSCode == best {
			return m.Category, nil
		}
	}
	return "", fmt.Errorf("hs code %s: %w", code, ErrNotFound)
}

// classificationPrefixes turns "8518.22.00" into ["8518.22.00", "8518.22", "8518", "85"].
func classificationPrefixes(code string) []string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code)
	if len(digits) < 2 {
		return nil
	}

	var out []string
	n := len(digits)
	if n%2 == 1 {
		out = append(out, formatHSCode(digits))
	}
	for n &^= 1; n >= 2; n -= 2 {
		out = append(out, formatHSCode(digits[:n]))
	}
	return out
}

func formatHSCode(digits string) string {
	if len(digits) <= 4 {
		return digits
	}
	var b strings.Builder
	b.WriteString(digits[:4])
	for i := 4; i < len(digits); i += 2 {
		b.WriteByte('.')
		b.WriteString(digits[i:min(i+2, len(digits))])
	}
	return b.String()
}

// SeedDefaults inserts the bundled classifications, leaving existing codes untouched.
func (s *HSCodeService) SeedDefaults(ctx context.Context) error {
	var seeds []seedHSCode
	if err := yaml.Unmarshal(seedHSCodesYAML, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed hs codes: %w", err)
	}
	codes := make([]model.HSCode, 0, len(seeds))
	for _, sc := range seeds {
		codes = append(codes, model.HSCode{HSCode: sc.HSCode, Description: sc.Description, Category: sc.Category})
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "hs_code"}}, DoNothing: true}).
		Create(&codes)
	if result.Error != nil {
		return fmt.Errorf("failed to seed hs codes: %w", result.Error)
	}
	slog.InfoContext(ctx, "hs codes seeded", "inserted", result.RowsAffected, "bundled", len(codes))
	return nil
}
