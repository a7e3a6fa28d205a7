package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

func (f CommandFactory) newAnalysisService(flgs *Flags) (*service.AnalysisService, error) {
	table, err := f.LoadRates(flgs)
	if err != nil {
		return nil, err
	}
	return service.NewAnalysisService(nil, estimator.New(table), f.CreateQuoter(flgs), nil, nil), nil
}

func (f CommandFactory) CreateEstimateCommand(flgs *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the landed cost of a shipment",
		Long:  `Estimate the landed cost of a shipment and print the cost breakdown as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flgs.shipment()
			if err != nil {
				return err
			}
			svc, err := f.newAnalysisService(flgs)
			if err != nil {
				return err
			}

			result, err := svc.Estimate(context.Background(), in)
			if err != nil {
				return describe(err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	bindRatesFlag(c, flgs)
	bindShipmentFlags(c, flgs)
	return c
}

func (f CommandFactory) CreateCompareCommand(flgs *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "compare",
		Short: "Compare the landed cost across shipping methods",
		Long:  `Estimate a shipment under every shipping method of the rate table, cheapest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flgs.shipment()
			if err != nil {
				return err
			}
			svc, err := f.newAnalysisService(flgs)
			if err != nil {
				return err
			}

			comparisons, err := svc.Compare(context.Background(), in)
			if err != nil {
				return describe(err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tDAYS\tFREIGHT\tDUTIES\tTOTAL\tESTIMATE")
			for _, m := range comparisons {
				b := m.Breakdown
				fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%t\n",
					m.ShippingMethod, m.TransitDays, b.Freight, b.Duties, b.TotalCost, b.IsEstimate)
			}
			return w.Flush()
		},
	}
	bindRatesFlag(c, flgs)
	bindShipmentFlags(c, flgs)
	return c
}

// describe lists every invalid field of a ValidationError on its own line.
func describe(err error) error {
	var ve *estimator.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	msg := "invalid shipment:"
	for _, fe := range ve.Fields {
		msg += "\n  " + fe.Field + ": " + fe.Message
	}
	return errors.New(msg)
}
