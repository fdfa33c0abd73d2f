package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/agroguard/agroguard/core/pkg/api"
	"github.com/agroguard/agroguard/core/pkg/registration"
	"github.com/spf13/cobra"
)

func newFarmersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farmers",
		Short: "Browse registered farmers",
	}

	var district, crop string
	list := &cobra.Command{
		Use:   "list",
		Short: "List registered farmers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := a.apiContext(cmd.Context())
			defer cancel()

			farmers, err := client.ListFarmers(ctx)
			if err != nil {
				return fmt.Errorf("list farmers: %w", err)
			}
			farmers = filterFarmers(farmers, district, crop)

			return a.printer(cmd.OutOrStdout()).print(farmers, func(w io.Writer) {
				row(w, "ID", "NAME", "PHONE", "DISTRICT", "CROP", "LANGUAGE", "STATUS")
				for _, f := range farmers {
					row(w, f.ID, f.Name, f.Phone, f.District, f.Crop, f.Language, f.Status)
				}
			})
		},
	}
	list.Flags().StringVar(&district, "district", "", "only farmers in this district")
	list.Flags().StringVar(&crop, "crop", "", "only farmers growing this crop")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one farmer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := a.apiContext(cmd.Context())
			defer cancel()

			farmer, err := client.GetFarmer(ctx, args[0])
			if api.IsNotFound(err) {
				return fmt.Errorf("farmer %s not found", args[0])
			}
			if err != nil {
				return fmt.Errorf("get farmer %s: %w", args[0], err)
			}
			return a.printer(cmd.OutOrStdout()).print(farmer, func(w io.Writer) {
				printFarmer(w, farmer)
			})
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func filterFarmers(farmers []registration.Farmer, district, crop string) []registration.Farmer {
	if district == "" && crop == "" {
		return farmers
	}
	out := make([]registration.Farmer, 0, len(farmers))
	for _, f := range farmers {
		if district != "" && !strings.EqualFold(f.District, district) {
			continue
		}
		if crop != "" && !strings.EqualFold(f.Crop, crop) {
			continue
		}
		out = append(out, f)
	}
	return out
}
