package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nimasrn/trader-ledger/internal/services"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// formatFor picks the explicit format or falls back to the file extension.
func formatFor(format, path string) string {
	if format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return services.FormatYAML
	}
	return services.FormatJSON
}

func newExportCmd() *cobra.Command {
	var (
		user   string
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's traders, transactions and catalog to a file or stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			data, err := a.Service.Export(cmd.Context(), user, formatFor(format, out))
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err = os.WriteFile(out, data, 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", user, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from file extension)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		user   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an exported file into a user's ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "reading %s", args[0])
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			res, err := a.Service.Import(cmd.Context(), user, data, formatFor(format, args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from file extension)")
	return cmd
}
