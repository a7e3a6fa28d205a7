// Package cli implements the landedcost command-line tool.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenNSW/landedcost/internal/lookup"
	"github.com/OpenNSW/landedcost/internal/rates"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

// CommandFactory builds commands around replaceable dependencies.
type CommandFactory struct {
	CreateQuoter func(flags *Flags) service.Quoter
	LoadRates    func(flags *Flags) (*rates.Table, error)
}

var defaultCommandFactory = CommandFactory{
	CreateQuoter: createQuoter,
	LoadRates:    loadRates,
}

// Execute runs the root command with os.Args.
func Execute() error {
	return defaultCommandFactory.CreateRootCommand(&Flags{}).Execute()
}

func (f CommandFactory) CreateRootCommand(flgs *Flags) *cobra.Command {
	root := &cobra.Command{
		Use:           "landedcost",
		Short:         "Estimate the landed cost of international shipments",
		Long:          `landedcost estimates freight, duty, tax and fees of a shipment using the built-in rate table or live rate services.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		f.CreateEstimateCommand(flgs),
		f.CreateCompareCommand(flgs),
		f.CreateRatesCommand(flgs),
		f.CreateTokenCommand(flgs),
	)
	return root
}

func createQuoter(flags *Flags) service.Quoter {
	if !flags.Live {
		return nil
	}
	timeout := lookup.DefaultTimeout
	return lookup.NewQuoter(
		lookup.NewShippingClient(os.Getenv("SHIPPING_API_URL"), os.Getenv("SHIPPING_API_KEY"), timeout),
		lookup.NewTariffClient(os.Getenv("TARIFF_API_URL"), os.Getenv("TARIFF_API_KEY"), timeout),
	)
}

func loadRates(flags *Flags) (*rates.Table, error) {
	if flags.RatesFile == "" {
		return rates.Default()
	}
	return rates.Load(flags.RatesFile)
}
