package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/router-for-me/InvoiceDrafter/internal/app"
	"github.com/router-for-me/InvoiceDrafter/internal/config"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
	"github.com/spf13/cobra"
)

// errFieldErrors is returned after field errors were printed; main exits with status 2.
var errFieldErrors = errors.New("record has field errors")

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "invoicedraft",
		Short:         "Prepare invoice drafts and manage the beneficiary settings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default: $"+config.EnvConfigPath+" or the data directory)")

	root.AddCommand(
		newDraftCmd(opts),
		newInvoiceCmd(opts),
		newSettingsCmd(opts),
		newSequenceCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

// withApp opens the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Open(ctx, config.AppConfig{ConfigPath: opts.configPath})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// report prints field errors as JSON and converts them to errFieldErrors; other errors pass through.
func report(w io.Writer, err error) error {
	var errValidation *schema.ValidationError
	if errors.As(err, &errValidation) {
		if errPrint := printJSON(w, map[string]any{"errors": errValidation.Fields}); errPrint != nil {
			return errPrint
		}
		return errFieldErrors
	}
	return err
}

// readRecord decodes the JSON record at path, or stdin when path is "-".
func readRecord(cmd *cobra.Command, path string, dst any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("--from is required")
	}
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, errOpen := os.Open(path)
		if errOpen != nil {
			return fmt.Errorf("open %s: %w", path, errOpen)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	if errDecode := json.NewDecoder(r).Decode(dst); errDecode != nil {
		return fmt.Errorf("decode %s: %w", path, errDecode)
	}
	return nil
}
