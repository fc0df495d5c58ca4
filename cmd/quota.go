package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Inspect and reset the monthly unlock allowance",
}

var quotaStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print how many unlocks are left in this period",
	Run: func(cmd *cobra.Command, _ []string) {
		s := mustSession(cmd.Context())
		defer s.Close()

		current := s.requireProfile()
		fmt.Printf("plan: %s\nunlocks: %s\n", current.SubscriptionTier, quotaLabel(current))
	},
}

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new period now, the same way the scheduled reset does",
	Run: func(cmd *cobra.Command, _ []string) {
		s := mustSession(cmd.Context())
		defer s.Close()

		updated, err := s.gate.ResetPeriod(cmd.Context())
		if err != nil {
			s.logger.Fatal("resetting unlock period", zap.Error(err))
		}
		fmt.Printf("unlocks: %s\n", quotaLabel(updated))
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd)
	quotaCmd.AddCommand(quotaStatusCmd, quotaResetCmd)
}
