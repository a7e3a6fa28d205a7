package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenNSW/landedcost/internal/estimator"
)

// Flags holds every command-line option; each command binds the subset it uses.
type Flags struct {
	RatesFile string
	InputFile string
	Live      bool

	Shipment estimator.ShipmentInput

	UserID   string
	Email    string
	Secret   string
	Issuer   string
	TokenTTL string
}

func bindRatesFlag(c *cobra.Command, flgs *Flags) {
	c.Flags().StringVar(&flgs.RatesFile, "rates", os.Getenv("RATES_FILE"), "Path to a YAML rate table overriding the built-in one.")
}

func bindShipmentFlags(c *cobra.Command, flgs *Flags) {
	s := &flgs.Shipment
	f := c.Flags()
	f.StringVar(&flgs.InputFile, "file", "", "Read the shipment from a JSON file instead of flags.")
	f.BoolVar(&flgs.Live, "live", false, "Query the shipping and tariff APIs configured in the environment.")
	f.StringVar(&s.ProductName, "name", "", "Product name.")
	f.StringVar(&s.ProductCategory, "category", "", "Rate table product category, e.g. electronics.")
	f.StringVar(&s.HSCode, "hs-code", "", "Harmonized System code.")
	f.StringVar(&s.OriginCountry, "origin", "", "Origin country (ISO 3166-1 alpha-2).")
	f.StringVar(&s.DestinationCountry, "destination", "", "Destination country (ISO 3166-1 alpha-2).")
	f.Float64Var(&s.UnitPrice, "unit-price", 0, "Price of one unit.")
	f.IntVar(&s.Quantity, "quantity", 1, "Number of units.")
	f.Float64Var(&s.Weight, "weight", 0, "Weight of one unit in kg.")
	f.Float64Var(&s.Dimensions.Length, "length", 0, "Length of one unit.")
	f.Float64Var(&s.Dimensions.Width, "width", 0, "Width of one unit.")
	f.Float64Var(&s.Dimensions.Height, "height", 0, "Height of one unit.")
	f.StringVar(&s.Dimensions.Unit, "unit", "cm", "Dimension unit: cm, mm, m or in.")
	f.StringVar(&s.ShippingMethod, "method", "air", "Shipping method.")
	f.StringVar(&s.UrgencyLevel, "urgency", "", "Urgency level.")
}

// shipment returns the shipment from --file when given, else from the flags.
func (flgs *Flags) shipment() (estimator.ShipmentInput, error) {
	if flgs.InputFile == "" {
		return flgs.Shipment, nil
	}
	raw, err := os.ReadFile(flgs.InputFile)
	if err != nil {
		return estimator.ShipmentInput{}, fmt.Errorf("failed to read shipment file: %w", err)
	}
	var in estimator.ShipmentInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return estimator.ShipmentInput{}, fmt.Errorf("failed to parse shipment file: %w", err)
	}
	return in, nil
}
