package rates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	assert.True(t, table.DutyRate("Electronics").Equal(decimal.RequireFromString("0.065")))
	assert.True(t, table.DutyRate(" textiles ").Equal(decimal.RequireFromString("0.128")))
	assert.True(t, table.DutyRate("unknown").Equal(decimal.RequireFromString("0.05")))
	assert.True(t, table.TaxRate("DE").Equal(decimal.RequireFromString("0.07")))
	assert.Equal(t, 0.02, table.InsuranceRate)
	assert.Equal(t, float64(5000), table.Shipping.VolumetricDivisor)
	assert.Equal(t, []string{"air", "express", "ground", "ocean"}, table.MethodNames())

	threshold, ok := table.DeMinimisThreshold("us")
	assert.True(t, ok)
	assert.True(t, threshold.Equal(decimal.NewFromInt(800)))

	_, ok = table.DeMinimisThreshold("DE")
	assert.False(t, ok)
}

func TestUrgencyMultiplier(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	m, ok := table.UrgencyMultiplier("")
	assert.True(t, ok)
	assert.True(t, m.Equal(decimal.NewFromInt(1)))

	m, ok = table.UrgencyMultiplier("URGENT")
	assert.True(t, ok)
	assert.True(t, m.Equal(decimal.RequireFromString("1.25")))

	_, ok = table.UrgencyMultiplier("yesterday")
	assert.False(t, ok)
}

func TestPerKgRate(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	air, ok := table.Method("Air")
	require.True(t, ok)
	assert.True(t, table.PerKgRate(air).Equal(decimal.RequireFromString("4.5")))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duty above one",
			yaml: "duty: {default: 1.5}\nshipping: {volumetricDivisor: 5000, methods: {air: {multiplier: 1}}}",
			want: "duty.default",
		},
		{
			name: "negative fee",
			yaml: "handlingFee: -1\nshipping: {volumetricDivisor: 5000, methods: {air: {multiplier: 1}}}",
			want: "fees must not be negative",
		},
		{
			name: "nan rate",
			yaml: "insuranceRate: .nan\nshipping: {volumetricDivisor: 5000, methods: {air: {multiplier: 1}}}",
			want: "insuranceRate must be a finite number",
		},
		{
			name: "infinite multiplier",
			yaml: "shipping: {volumetricDivisor: 5000, methods: {air: {multiplier: .inf}}}",
			want: "shipping.methods.air.multiplier must be a finite number",
		},
		{
			name: "no methods",
			yaml: "shipping: {volumetricDivisor: 5000}",
			want: "at least one shipping method",
		},
		{
			name: "zero divisor",
			yaml: "shipping: {methods: {air: {multiplier: 1}}}",
			want: "volumetricDivisor",
		},
		{
			name: "malformed",
			yaml: "duty: [",
			want: "failed to parse rate table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	content := `
duty:
  default: 0.04
  categories:
    Electronics: 0.02
tax:
  default: 0.1
  countries:
    gb: 0.2
shipping:
  basePerKg: 1
  volumetricDivisor: 6000
  methods:
    AIR: {multiplier: 2, transitDays: 4}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	assert.True(t, table.DutyRate("electronics").Equal(decimal.RequireFromString("0.02")))
	assert.True(t, table.TaxRate("GB").Equal(decimal.RequireFromString("0.2")))
	assert.True(t, table.TaxRate("FR").Equal(decimal.RequireFromString("0.1")))
	_, ok := table.Method("air")
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read rate table")
}
