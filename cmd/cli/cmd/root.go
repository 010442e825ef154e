package cmd

import (
	"encoding/json"
	"io"

	"github.com/nimasrn/trader-ledger/internal/app"
	"github.com/nimasrn/trader-ledger/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envPath string
}

// NewRootCmd builds the ledger command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ledger",
		Short:         "Trader balance ledger maintenance",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load(opts.envPath)
		},
	}
	root.PersistentFlags().StringVar(&opts.envPath, "env", "", "path of a .env file to load")

	root.AddCommand(
		newMigrateCmd(),
		newExportCmd(),
		newImportCmd(),
		newReportCmd(),
		newReconcileCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func openApp() (*app.App, error) {
	return app.New(config.Get())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
