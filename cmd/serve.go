package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled unlock period reset until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		s := mustSession(ctx)
		defer s.Close()

		sched, err := scheduler.New(
			&scheduler.Config{Spec: s.config.Quota.ResetSchedule},
			&scheduler.Deps{Resetter: s.gate, Logger: s.logger},
		)
		if err != nil {
			s.logger.Fatal("creating scheduler", zap.Error(err))
		}

		s.logger.Info("starting the sponsorpath scheduler", zap.String("version", version))
		sched.Start(ctx)

		<-ctx.Done()
		s.logger.Info("shutting down", zap.String("reason", context.Cause(ctx).Error()))
		sched.Stop()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
