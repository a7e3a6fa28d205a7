package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (f CommandFactory) CreateRatesCommand(flgs *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "rates",
		Short: "Print the active rate table",
		Long:  `Print the rate table used when no live quote is available, as YAML.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := f.LoadRates(flgs)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(table)
			if err != nil {
				return fmt.Errorf("failed to encode rate table: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	bindRatesFlag(c, flgs)
	return c
}
