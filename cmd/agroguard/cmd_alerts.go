package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agroguard/agroguard/contrib/validator/playground"
	"github.com/agroguard/agroguard/core/pkg/alerts"
	"github.com/agroguard/agroguard/core/pkg/contracts"
	"github.com/agroguard/agroguard/core/pkg/registration"
	"github.com/spf13/cobra"
)

func newAlertsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Send SMS alerts to farmers and review past alerts",
	}
	cmd.AddCommand(newAlertsSendCmd(a), newAlertsHistoryCmd(a))
	return cmd
}

func newAlertsSendCmd(a *app) *cobra.Command {
	var (
		draft       alerts.Draft
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an SMS alert to farmers in a district",
		Example: `  agroguard alerts send --type drought --priority high --district Gulu \
    --message "Low rainfall expected. Delay maize planting by 2 weeks."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if interactive {
				if err := a.promptAlert(&draft); err != nil {
					return err
				}
			}

			composer, err := alerts.NewComposer(playground.NewDriver())
			if err != nil {
				return err
			}
			alert, err := composer.Compose(draft)
			if err != nil {
				var verrs contracts.ValidationErrors
				if errors.As(err, &verrs) {
					printAlertErrors(cmd.ErrOrStderr(), verrs)
				}
				return err
			}

			client, err := a.apiClient(ctx)
			if err != nil {
				return err
			}
			store, err := a.database(ctx)
			if err != nil {
				return err
			}
			broker, err := a.messageBroker(ctx)
			if err != nil {
				return err
			}

			callCtx, cancel := a.apiContext(ctx)
			defer cancel()

			dispatcher := alerts.NewDispatcher(broker, a.settings.Kafka.Topic, client, store, a.logger)
			sent, err := dispatcher.Send(callCtx, alert)
			if err != nil {
				return err
			}

			return a.printer(cmd.OutOrStdout()).print(sent, func(w io.Writer) {
				fmt.Fprintln(w, "Alert Sent")
				fmt.Fprintf(w, "SMS alert sent to %d farmers in %s.\n", sent.SentTo, sent.District)
				fmt.Fprintln(w)
				printAlert(w, sent)
			})
		},
	}

	cmd.Flags().StringVar(&draft.Type, "type", "", "alert type: drought, pest, weather, planting, harvest")
	cmd.Flags().StringVar(&draft.Priority, "priority", "", "priority: high, medium, low (default medium)")
	cmd.Flags().StringVar(&draft.District, "district", "", "target district")
	cmd.Flags().StringVar(&draft.Crop, "crop", "", `target crop (default "All Crops")`)
	cmd.Flags().StringVar(&draft.Message, "message", "", "SMS text, at most 160 characters")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for the alert fields")
	return cmd
}

func (a *app) promptAlert(d *alerts.Draft) error {
	labels := make([]string, len(alerts.Types))
	current := ""
	for i, t := range alerts.Types {
		labels[i] = t.Icon + " " + t.Label
		if string(t.Value) == d.Type {
			current = labels[i]
		}
	}
	choice, err := a.prompter.Select("Alert Type", labels, current)
	if err != nil {
		return err
	}
	for i, l := range labels {
		if l == choice {
			d.Type = string(alerts.Types[i].Value)
		}
	}

	priority := d.Priority
	if priority == "" {
		priority = string(alerts.PriorityMedium)
	}
	if d.Priority, err = a.prompter.Select("Priority", []string{"high", "medium", "low"}, priority); err != nil {
		return err
	}
	if d.District, err = a.prompter.Select("Target District", registration.Districts, d.District); err != nil {
		return err
	}

	crop := d.Crop
	if crop == "" {
		crop = alerts.AllCrops
	}
	if d.Crop, err = a.prompter.Select("Target Crop", append([]string{alerts.AllCrops}, registration.Crops...), crop); err != nil {
		return err
	}

	for {
		if d.Message, err = a.prompter.Input("Alert Message", d.Message, "Keep it under 160 characters for SMS"); err != nil {
			return err
		}
		if fitted := alerts.FitMessage(d.Message); fitted != contracts.TrimBlank(d.Message) {
			d.Message = fitted
			continue
		}
		break
	}
	return nil
}

func printAlertErrors(w io.Writer, verrs contracts.ValidationErrors) {
	fmt.Fprintln(w, "Please fix the following:")
	for _, e := range verrs {
		fmt.Fprintf(w, "  %-10s %s\n", e.Field+":", e.Message)
	}
}

func printAlert(w io.Writer, al alerts.Alert) {
	label := string(al.Type)
	if info, ok := al.Type.Info(); ok {
		label = info.Icon + " " + info.Label
	}
	row(w, "ID:", al.ID)
	row(w, "Type:", label)
	row(w, "Priority:", al.Priority)
	row(w, "District:", al.District)
	row(w, "Crop:", al.Crop)
	row(w, "Message:", al.Message)
	row(w, "Sent to:", fmt.Sprintf("%d farmers", al.SentTo))
	row(w, "Status:", al.Status)
	row(w, "Time:", al.Timestamp.Local().Format(time.DateTime))
}

func newAlertsHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently sent alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = a.settings.Alerts.HistoryLimit
			}
			store, err := a.database(cmd.Context())
			if err != nil {
				return err
			}
			recent, err := store.RecentAlerts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout()).print(recent, func(w io.Writer) {
				row(w, "TIME", "TYPE", "PRIORITY", "DISTRICT", "CROP", "SENT TO", "STATUS", "MESSAGE")
				for _, al := range recent {
					row(w, al.Timestamp.Local().Format(time.DateTime), al.Type, al.Priority, al.District,
						al.Crop, al.SentTo, al.Status, truncate(al.Message, 40))
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of alerts to show, 0 for all")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
