package main

import (
	"context"

	"github.com/router-for-me/InvoiceDrafter/internal/app"
	"github.com/router-for-me/InvoiceDrafter/internal/config"
	"github.com/router-for-me/InvoiceDrafter/internal/draft"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
	"github.com/spf13/cobra"
)

func newDraftCmd(opts *rootOptions) *cobra.Command {
	draftCmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect the invoice draft",
	}
	draftCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print a fresh draft with its defaults, profiles and next filename",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				view, err := a.Pipeline().LoadDraft(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	})
	return draftCmd
}

func newInvoiceCmd(opts *rootOptions) *cobra.Command {
	var from string
	invoiceCmd := &cobra.Command{
		Use:   "invoice",
		Short: "Finalize invoices",
	}
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Validate and finalize an invoice draft, advancing the sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var d schema.InvoiceDraft
			if err := readRecord(cmd, from, &d); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				saved, err := a.Pipeline().SaveInvoice(ctx, d)
				if err != nil {
					return report(cmd.OutOrStdout(), err)
				}
				return printJSON(cmd.OutOrStdout(), saved)
			})
		},
	}
	saveCmd.Flags().StringVar(&from, "from", "", "JSON file holding the draft (- for stdin)")
	invoiceCmd.AddCommand(saveCmd)
	return invoiceCmd
}

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update the settings pages",
	}
	settingsCmd.AddCommand(
		newProfileCmd(opts, "bank", "bank details",
			func(p *draft.Pipeline) func(context.Context) (draft.ProfileView[schema.BankProfile], error) {
				return p.LoadBankProfile
			},
			func(p *draft.Pipeline) func(context.Context, schema.BankProfile) (schema.BankProfile, error) {
				return p.SaveBankProfile
			}),
		newProfileCmd(opts, "address", "beneficiary address",
			func(p *draft.Pipeline) func(context.Context) (draft.ProfileView[schema.AddressProfile], error) {
				return p.LoadAddressProfile
			},
			func(p *draft.Pipeline) func(context.Context, schema.AddressProfile) (schema.AddressProfile, error) {
				return p.SaveAddressProfile
			}),
		newProfileCmd(opts, "system", "system preferences",
			func(p *draft.Pipeline) func(context.Context) (draft.ProfileView[schema.SystemPreferences], error) {
				return p.LoadSystemPreferences
			},
			func(p *draft.Pipeline) func(context.Context, schema.SystemPreferences) (schema.SystemPreferences, error) {
				return p.SaveSystemPreferences
			}),
	)
	return settingsCmd
}

func newProfileCmd[T any](
	opts *rootOptions,
	name, what string,
	load func(*draft.Pipeline) func(context.Context) (draft.ProfileView[T], error),
	save func(*draft.Pipeline) func(context.Context, T) (T, error),
) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   name,
		Short: "Manage the " + what,
	}
	profileCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored " + what + " with any field errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				view, err := load(a.Pipeline())(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	})

	var from string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Validate and store the " + what,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var record T
			if err := readRecord(cmd, from, &record); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				saved, err := save(a.Pipeline())(ctx, record)
				if err != nil {
					return report(cmd.OutOrStdout(), err)
				}
				return printJSON(cmd.OutOrStdout(), saved)
			})
		},
	}
	setCmd.Flags().StringVar(&from, "from", "", "JSON file holding the record (- for stdin)")
	profileCmd.AddCommand(setCmd)
	return profileCmd
}

func newSequenceCmd(opts *rootOptions) *cobra.Command {
	sequenceCmd := &cobra.Command{
		Use:   "sequence",
		Short: "Inspect the invoice counter",
	}
	sequenceCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the number the next invoice will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				current, err := a.Pipeline().CurrentSequence(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"current": current})
			})
		},
	})
	return sequenceCmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the settings database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Migrate(cmd.Context(), config.AppConfig{ConfigPath: opts.configPath}); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]bool{"ok": true})
		},
	}
}
