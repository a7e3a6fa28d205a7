// Package rates holds the single table of fallback constants used by the
// landed-cost estimator when no live quote is available.
package rates

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_rates.yaml
var defaultRatesYAML []byte

// Table is the consolidated rate configuration keyed by category and country.
type Table struct {
	Duty          DutyRates          `yaml:"duty" json:"duty"`
	Tax           TaxRates           `yaml:"tax" json:"tax"`
	InsuranceRate float64            `yaml:"insuranceRate" json:"insuranceRate"`
	Customs       CustomsFees        `yaml:"customs" json:"customs"`
	HandlingFee   float64            `yaml:"handlingFee" json:"handlingFee"`
	LastMileFee   float64            `yaml:"lastMileFee" json:"lastMileFee"`
	Shipping      ShippingRates      `yaml:"shipping" json:"shipping"`
	DeMinimis     map[string]float64 `yaml:"deMinimis" json:"deMinimis"` // country code -> value threshold
	DrawbackRate  float64            `yaml:"drawbackRate" json:"drawbackRate"`
}

type DutyRates struct {
	Default    float64            `yaml:"default" json:"default"`
	Categories map[string]float64 `yaml:"categories" json:"categories"`
}

type TaxRates struct {
	Default   float64            `yaml:"default" json:"default"`
	Countries map[string]float64 `yaml:"countries" json:"countries"`
}

type CustomsFees struct {
	BaseFee   float64 `yaml:"baseFee" json:"baseFee"`
	ValueRate float64 `yaml:"valueRate" json:"valueRate"`
}

type ShippingRates struct {
	BasePerKg         float64                   `yaml:"basePerKg" json:"basePerKg"`
	VolumetricDivisor float64                   `yaml:"volumetricDivisor" json:"volumetricDivisor"`
	Methods           map[string]ShippingMethod `yaml:"methods" json:"methods"`
	Urgency           map[string]float64        `yaml:"urgency" json:"urgency"`
}

type ShippingMethod struct {
	Multiplier  float64 `yaml:"multiplier" json:"multiplier"`
	TransitDays int     `yaml:"transitDays" json:"transitDays"`
}

// Default returns the embedded rate table.
func Default() (*Table, error) {
	return Parse(defaultRatesYAML)
}

// Load reads a rate table from path, or the embedded default when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML rate table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse rate table: %w", err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// normalize lower-cases category and method keys and upper-cases country codes.
func (t *Table) normalize() {
	t.Duty.Categories = rekey(t.Duty.Categories, NormalizeCategory)
	t.Tax.Countries = rekey(t.Tax.Countries, NormalizeCountry)
	t.DeMinimis = rekey(t.DeMinimis, NormalizeCountry)
	t.Shipping.Urgency = rekey(t.Shipping.Urgency, NormalizeKey)

	methods := make(map[string]ShippingMethod, len(t.Shipping.Methods))
	for k, v := range t.Shipping.Methods {
		methods[NormalizeKey(k)] = v
	}
	t.Shipping.Methods = methods
}

func rekey(in map[string]float64, fn func(string) string) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[fn(k)] = v
	}
	return out
}

// Validate checks that every number is finite, every rate is a fraction and every fee
// is non-negative.
func (t *Table) Validate() error {
	if err := t.checkFinite(); err != nil {
		return err
	}

	fractions := map[string]float64{
		"duty.default":      t.Duty.Default,
		"tax.default":       t.Tax.Default,
		"insuranceRate":     t.InsuranceRate,
		"customs.valueRate": t.Customs.ValueRate,
		"drawbackRate":      t.DrawbackRate,
	}
	for k, v := range t.Duty.Categories {
		fractions["duty.categories."+k] = v
	}
	for k, v := range t.Tax.Countries {
		fractions["tax.countries."+k] = v
	}
	for name, v := range fractions {
		if v < 0 || v > 1 {
			return fmt.Errorf("rate table: %s must be between 0 and 1, got %v", name, v)
		}
	}

	if t.Customs.BaseFee < 0 || t.HandlingFee < 0 || t.LastMileFee < 0 {
		return fmt.Errorf("rate table: fees must not be negative")
	}
	if t.Shipping.BasePerKg < 0 {
		return fmt.Errorf("rate table: shipping.basePerKg must not be negative")
	}
	if t.Shipping.VolumetricDivisor <= 0 {
		return fmt.Errorf("rate table: shipping.volumetricDivisor must be positive")
	}
	if len(t.Shipping.Methods) == 0 {
		return fmt.Errorf("rate table: at least one shipping method is required")
	}
	for name, m := range t.Shipping.Methods {
		if m.Multiplier <= 0 {
			return fmt.Errorf("rate table: shipping method %s needs a positive multiplier", name)
		}
	}
	for name, m := range t.Shipping.Urgency {
		if m <= 0 {
			return fmt.Errorf("rate table: urgency %s needs a positive multiplier", name)
		}
	}
	for country, v := range t.DeMinimis {
		if v < 0 {
			return fmt.Errorf("rate table: de minimis for %s must not be negative", country)
		}
	}
	return nil
}

// checkFinite rejects NaN and infinite values, which YAML accepts as .nan and .inf.
func (t *Table) checkFinite() error {
	values := map[string]float64{
		"duty.default":               t.Duty.Default,
		"tax.default":                t.Tax.Default,
		"insuranceRate":              t.InsuranceRate,
		"customs.valueRate":          t.Customs.ValueRate,
		"customs.baseFee":            t.Customs.BaseFee,
		"handlingFee":                t.HandlingFee,
		"lastMileFee":                t.LastMileFee,
		"drawbackRate":               t.DrawbackRate,
		"shipping.basePerKg":         t.Shipping.BasePerKg,
		"shipping.volumetricDivisor": t.Shipping.VolumetricDivisor,
	}
	for k, v := range t.Duty.Categories {
		values["duty.categories."+k] = v
	}
	for k, v := range t.Tax.Countries {
		values["tax.countries."+k] = v
	}
	for k, m := range t.Shipping.Methods {
		values["shipping.methods."+k+".multiplier"] = m.Multiplier
	}
	for k, v := range t.Shipping.Urgency {
		values["shipping.urgency."+k] = v
	}
	for k, v := range t.DeMinimis {
		values["deMinimis."+k] = v
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("rate table: %s must be a finite number, got %v", name, v)
		}
	}
	return nil
}

// DutyRate returns the fallback duty rate for a product category.
func (t *Table) DutyRate(category string) decimal.Decimal {
	if r, ok := t.Duty.Categories[NormalizeCategory(category)]; ok {
		return decimal.NewFromFloat(r)
	}
	return decimal.NewFromFloat(t.Duty.Default)
}

// TaxRate returns the tax rate for a destination country.
func (t *Table) TaxRate(destination string) decimal.Decimal {
	if r, ok := t.Tax.Countries[NormalizeCountry(destination)]; ok {
		return decimal.NewFromFloat(r)
	}
	return decimal.NewFromFloat(t.Tax.Default)
}

// DeMinimisThreshold returns the duty-free value threshold for a destination, if any.
func (t *Table) DeMinimisThreshold(destination string) (decimal.Decimal, bool) {
	v, ok := t.DeMinimis[NormalizeCountry(destination)]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v), true
}

// Method looks up a shipping method by name.
func (t *Table) Method(name string) (ShippingMethod, bool) {
	m, ok := t.Shipping.Methods[NormalizeKey(name)]
	return m, ok
}

// MethodNames returns the configured shipping methods in a stable order.
func (t *Table) MethodNames() []string {
	names := make([]string, 0, len(t.Shipping.Methods))
	for name := range t.Shipping.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UrgencyMultiplier returns the multiplier for an urgency level. Empty means standard.
func (t *Table) UrgencyMultiplier(level string) (decimal.Decimal, bool) {
	if level == "" {
		return decimal.NewFromInt(1), true
	}
	m, ok := t.Shipping.Urgency[NormalizeKey(level)]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(m), true
}

// PerKgRate is basePerKg × method multiplier.
func (t *Table) PerKgRate(method ShippingMethod) decimal.Decimal {
	return decimal.NewFromFloat(t.Shipping.BasePerKg).Mul(decimal.NewFromFloat(method.Multiplier))
}

func NormalizeCategory(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func NormalizeCountry(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func NormalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
