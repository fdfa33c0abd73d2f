package main

import (
	"fmt"
	"io"

	"github.com/agroguard/agroguard/core/pkg/advisory"
	"github.com/spf13/cobra"
)

func newAdviceCmd(a *app) *cobra.Command {
	var district, crop string

	cmd := &cobra.Command{
		Use:   "advice",
		Short: "Planting advice for a crop in a district",
		Example: `  agroguard advice --district Kabale --crop maize
  agroguard advice --district Gulu --crop beans -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := advisory.Default()
			conditions := engine.ConditionsFor(district)
			advice := engine.Advice(district, crop)

			out := struct {
				District   string              `json:"district"`
				Crop       string              `json:"crop"`
				Conditions advisory.Conditions `json:"conditions"`
				Advice     []string            `json:"advice"`
			}{district, crop, conditions, advice}

			return a.printer(cmd.OutOrStdout()).print(out, func(w io.Writer) {
				fmt.Fprintf(w, "%s in %s\n", crop, district)
				row(w, "Rainfall:", fmt.Sprintf("%.0f mm", conditions.RainfallMM))
				row(w, "NDVI:", fmt.Sprintf("%.2f", conditions.NDVI))
				row(w, "Pest risk:", conditions.PestRisk)
				row(w, "Temperature:", fmt.Sprintf("%.0f°C", conditions.TemperatureC))
				fmt.Fprintln(w)
				for _, line := range advice {
					fmt.Fprintln(w, line)
				}
			})
		},
	}
	cmd.Flags().StringVar(&district, "district", "", "district name")
	cmd.Flags().StringVar(&crop, "crop", "", "crop name")
	_ = cmd.MarkFlagRequired("district")
	_ = cmd.MarkFlagRequired("crop")
	return cmd
}
