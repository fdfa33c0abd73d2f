package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/agroguard/agroguard/core/pkg/api"
	"github.com/spf13/cobra"
)

func newCropsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crops",
		Short: "Satellite crop monitoring",
	}

	var (
		farmerID string
		refresh  bool
	)
	monitor := &cobra.Command{
		Use:   "monitor",
		Short: "Show NDVI and soil moisture readings with a health summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.crops(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := a.apiContext(cmd.Context())
			defer cancel()

			if cached, ok := source.(*api.CachedCrops); ok && refresh {
				if err := cached.Invalidate(ctx); err != nil {
					a.logger.WithError(err).Warn("invalidate crop cache")
				}
			}

			var data []api.CropData
			if farmerID != "" {
				data, err = source.FarmerCrops(ctx, farmerID)
			} else {
				data, err = source.MonitoringData(ctx)
			}
			if err != nil {
				return fmt.Errorf("crop monitoring: %w", err)
			}

			report := struct {
				Summary api.Summary    `json:"summary"`
				Crops   []api.CropData `json:"crops"`
			}{api.Summarize(data), data}

			return a.printer(cmd.OutOrStdout()).print(report, func(w io.Writer) {
				row(w, "ID", "FARMER", "LOCATION", "CROP", "NDVI", "MOISTURE", "HEALTH", "RISK", "UPDATED")
				for _, d := range data {
					row(w, d.ID, d.FarmerName, d.Location, d.Crop,
						fmt.Sprintf("%.2f", d.NDVIValue), fmt.Sprintf("%.0f%%", d.SoilMoisture),
						d.HealthStatus, d.RiskLevel, d.LastUpdated)
				}
				fmt.Fprintln(w)
				printSummary(w, report.Summary)
				for _, d := range data {
					if len(d.Recommendations) == 0 {
						continue
					}
					fmt.Fprintf(w, "\n%s (%s, %s):\n", d.FarmerName, d.Crop, d.Location)
					for _, r := range d.Recommendations {
						fmt.Fprintf(w, "  - %s\n", r)
					}
				}
			})
		},
	}
	monitor.Flags().StringVar(&farmerID, "farmer", "", "only plots of this farmer id")
	monitor.Flags().BoolVar(&refresh, "refresh", false, "bypass the crop cache")

	cmd.AddCommand(monitor)
	return cmd
}

func printSummary(w io.Writer, s api.Summary) {
	row(w, "Plots:", s.Total)
	row(w, "Average NDVI:", fmt.Sprintf("%.2f", s.AverageNDVI))

	health := make([]string, 0, len(s.ByHealth))
	for _, h := range []api.HealthStatus{api.HealthExcellent, api.HealthHealthy, api.HealthAtRisk, api.HealthPoor} {
		if n := s.ByHealth[h]; n > 0 {
			health = append(health, fmt.Sprintf("%s %d", h, n))
		}
	}
	row(w, "Health:", strings.Join(health, ", "))

	risk := make([]string, 0, len(s.ByRisk))
	for _, r := range []api.RiskLevel{api.RiskHigh, api.RiskMedium, api.RiskLow} {
		if n := s.ByRisk[r]; n > 0 {
			risk = append(risk, fmt.Sprintf("%s %d", r, n))
		}
	}
	row(w, "Risk:", strings.Join(risk, ", "))
}
