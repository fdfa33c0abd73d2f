package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agroguard/agroguard/core/pkg/registration"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// form is satisfied by both registration.FormSession and registration.DraftSession
type form interface {
	Set(field registration.Field, value string) error
	Input() registration.Input
	Validate() registration.Result
	Submit(ctx context.Context, r registration.Registrar) (*registration.Farmer, error)
}

// fieldFlags binds one flag per form field
type fieldFlags struct {
	values map[registration.Field]*string
}

func addFieldFlags(cmd *cobra.Command) *fieldFlags {
	ff := &fieldFlags{values: map[registration.Field]*string{}}
	bind := func(f registration.Field, name, usage string) {
		ff.values[f] = cmd.Flags().String(name, "", usage)
	}
	bind(registration.FieldName, "name", "farmer's full name")
	bind(registration.FieldPhone, "phone", "phone number, e.g. +256 700 123 456")
	bind(registration.FieldDistrict, "district", "district")
	bind(registration.FieldSubCounty, "sub-county", "sub-county (optional)")
	bind(registration.FieldCrop, "crop", "primary crop")
	bind(registration.FieldLanguage, "language", "SMS language: english, luganda, runyankole, ateso, acholi")
	return ff
}

var flagNames = map[registration.Field]string{
	registration.FieldName:      "name",
	registration.FieldPhone:     "phone",
	registration.FieldDistrict:  "district",
	registration.FieldSubCounty: "sub-county",
	registration.FieldCrop:      "crop",
	registration.FieldLanguage:  "language",
}

// apply sets every flag given on the command line, leaving other fields untouched
func (ff *fieldFlags) apply(cmd *cobra.Command, f form) error {
	for _, field := range registration.Fields {
		if !cmd.Flags().Changed(flagNames[field]) {
			continue
		}
		if err := f.Set(field, *ff.values[field]); err != nil {
			return fmt.Errorf("--%s: %w", flagNames[field], err)
		}
	}
	return nil
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		interactive bool
		draftID     string
		fields      *fieldFlags
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a farmer for SMS advisories",
		Long: `Register a farmer with the AgroGuard backend.

Values come from flags, or from prompts with --interactive. With --draft the form is
loaded from and saved to the local draft store, so a failed submission can be retried
later with 'agroguard register --draft <id>'.`,
		Example: `  agroguard register --name "John Mukasa" --phone 256700123456 --district Kabale --crop Maize
  agroguard register --interactive --draft kabale-visit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, id, err := a.openForm(ctx, draftID)
			if err != nil {
				return err
			}
			if err := fields.apply(cmd, f); err != nil {
				return err
			}

			if interactive {
				ok, err := a.promptForm(cmd.ErrOrStderr(), f)
				if err != nil {
					return err
				}
				if !ok {
					if ds, isDraft := f.(*registration.DraftSession); isDraft {
						if err := ds.Save(ctx, nil); err != nil {
							return err
						}
						fmt.Fprintf(cmd.ErrOrStderr(), "Registration not submitted. Draft saved as %q.\n", id)
						return nil
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "Registration not submitted.")
					return nil
				}
			}

			client, err := a.apiClient(ctx)
			if err != nil {
				return err
			}
			callCtx, cancel := a.apiContext(ctx)
			defer cancel()

			farmer, err := f.Submit(callCtx, client)
			if err != nil {
				var verr *registration.ValidationError
				if errors.As(err, &verr) {
					printValidation(cmd.ErrOrStderr(), verr.Result)
				}
				if id != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Form saved as draft %q.\n", id)
				}
				a.logger.WithError(err).Debug("registration failed")
				return err
			}

			a.logger.Info("farmer registered", "farmer_id", farmer.ID, "district", farmer.District)
			return a.printer(cmd.OutOrStdout()).print(farmer, func(w io.Writer) {
				fmt.Fprintln(w, "Farmer Registered Successfully!")
				fmt.Fprintf(w, "%s has been registered for %s farming in %s.\n", farmer.Name, farmer.Crop, farmer.District)
				fmt.Fprintln(w)
				printFarmer(w, farmer)
			})
		},
	}

	fields = addFieldFlags(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for each field")
	cmd.Flags().StringVar(&draftID, "draft", "", `draft id to resume and save to; "new" creates one`)
	return cmd
}

// openForm starts a plain form, or a draft-backed one when draftID is set
func (a *app) openForm(ctx context.Context, draftID string) (form, string, error) {
	if draftID == "" {
		return registration.NewFormSession(nil), "", nil
	}
	if draftID == "new" {
		draftID = uuid.NewString()[:8]
	}
	store, err := a.database(ctx)
	if err != nil {
		return nil, "", err
	}
	ds, err := registration.ResumeSession(ctx, store, draftID, nil)
	if err != nil {
		return nil, "", err
	}
	return ds, draftID, nil
}

// promptForm asks for every field, then re-asks invalid ones until the form
// validates. It returns false when the user declines to submit.
func (a *app) promptForm(errOut io.Writer, f form) (bool, error) {
	pending := registration.Fields
	for {
		for _, field := range pending {
			if err := a.promptField(f, field); err != nil {
				return false, err
			}
		}

		res := f.Validate()
		if res.IsValid {
			break
		}
		printValidation(errOut, res)

		pending = pending[:0:0]
		for _, field := range registration.Fields {
			if _, bad := res.Error(field); bad {
				pending = append(pending, field)
			}
		}
		if len(pending) == 0 {
			return false, fmt.Errorf("form cannot be validated: %s", res.Errors["form"])
		}
	}

	in := f.Input()
	return a.prompter.Confirm(fmt.Sprintf("Register %s (%s) in %s?", in.Name, in.Phone, in.District), true)
}

func (a *app) promptField(f form, field registration.Field) error {
	in := f.Input()
	var (
		value string
		err   error
	)
	switch field {
	case registration.FieldName:
		value, err = a.prompter.Input("Full Name", in.Name, "Enter farmer's full name")
	case registration.FieldPhone:
		value, err = a.prompter.Input("Phone Number", in.Phone, "Format: +256 7XX XXX XXX")
	case registration.FieldDistrict:
		value, err = a.prompter.Select("District", registration.Districts, in.District)
	case registration.FieldSubCounty:
		value, err = a.prompter.Input("Sub-County (optional)", in.SubCounty, "")
	case registration.FieldCrop:
		value, err = a.prompter.Select("Primary Crop", registration.Crops, in.Crop)
	case registration.FieldLanguage:
		labels := make([]string, len(registration.Languages))
		current := ""
		for i, l := range registration.Languages {
			labels[i] = l.Label
			if l.Value == in.Language {
				current = l.Label
			}
		}
		value, err = a.prompter.Select("Preferred Language", labels, current)
	}
	if err != nil {
		return err
	}
	return f.Set(field, value)
}

func printValidation(w io.Writer, res registration.Result) {
	fmt.Fprintln(w, "Please fix the following:")
	if msg, ok := res.Errors["form"]; ok {
		fmt.Fprintf(w, "  %s\n", msg)
	}
	for _, field := range registration.Fields {
		if msg, ok := res.Error(field); ok {
			fmt.Fprintf(w, "  %-10s %s\n", field+":", msg)
		}
	}
}

func printFarmer(w io.Writer, f *registration.Farmer) {
	row(w, "ID:", f.ID)
	row(w, "Name:", f.Name)
	row(w, "Phone:", f.Phone)
	row(w, "District:", f.District)
	if f.SubCounty != "" {
		row(w, "Sub-County:", f.SubCounty)
	}
	row(w, "Crop:", f.Crop)
	row(w, "Language:", f.Language)
	row(w, "Status:", f.Status)
}

func newValidateCmd(a *app) *cobra.Command {
	var fields *fieldFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check registration values without submitting them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := registration.NewFormSession(nil)
			if err := fields.apply(cmd, f); err != nil {
				return err
			}
			res := f.Validate()

			err := a.printer(cmd.OutOrStdout()).print(res, func(w io.Writer) {
				if res.IsValid {
					fmt.Fprintln(w, "Form is valid.")
					return
				}
				printValidation(w, res)
			})
			if err != nil {
				return err
			}
			if !res.IsValid {
				return registration.ErrInvalid
			}
			return nil
		},
	}
	fields = addFieldFlags(cmd)
	return cmd
}

func newFormatPhoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "format-phone <number>...",
		Short: "Format Ugandan phone numbers as +256 7XX XXX XXX",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type formatted struct {
				Input     string `json:"input"`
				Formatted string `json:"formatted"`
				Valid     bool   `json:"valid"`
			}
			out := make([]formatted, len(args))
			for i, arg := range args {
				f := registration.FormatPhoneNumber(arg)
				out[i] = formatted{Input: arg, Formatted: f, Valid: registration.ValidatePhoneNumber(f)}
			}
			return a.printer(cmd.OutOrStdout()).print(out, func(w io.Writer) {
				row(w, "INPUT", "FORMATTED", "VALID")
				for _, o := range out {
					row(w, o.Input, o.Formatted, o.Valid)
				}
			})
		},
	}
}
