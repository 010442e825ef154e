package cmd

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func parseAsOf(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, errors.Errorf("bad --as-of %q", s)
	}
	return &t, nil
}

func newReportCmd() *cobra.Command {
	var (
		user   string
		trader string
		asOf   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the portfolio summary, or one trader's balance with --trader",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			at, err := parseAsOf(asOf)
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			if trader != "" {
				b, err := a.Service.TraderBalance(cmd.Context(), user, trader, at)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), b)
			}
			r, err := a.Service.Report(cmd.Context(), user, at)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&trader, "trader", "", "trader id")
	cmd.Flags().StringVar(&asOf, "as-of", "", "only count transactions up to this date (RFC3339 or YYYY-MM-DD)")
	return cmd
}
