package cmd

import (
	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	var (
		user   string
		repair bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Find half-written debt conversions, for one user or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			users := []string{user}
			if user == "" {
				if users, err = a.Service.Users(ctx); err != nil {
					return err
				}
			}

			out := make(map[string]*model.ReconcileResult, len(users))
			for _, uid := range users {
				res, err := a.Service.Reconcile(ctx, uid, repair)
				if err != nil {
					return err
				}
				out[uid] = res
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (default all users)")
	cmd.Flags().BoolVar(&repair, "repair", false, "delete the surviving half of incomplete conversions")
	return cmd
}
