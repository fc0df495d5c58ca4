package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/companies"
	"github.com/spigell/sponsorpath/internal/logger"
)

var errUnknownCompany = errors.New("there is no such company")

var unlockCmd = &cobra.Command{
	Use:   "unlock <company-id>",
	Short: "Spend one unlock to reveal why a sponsor matches your profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := mustSession(ctx)
		defer s.Close()

		list := s.companies()
		if err := s.unlock(ctx, list, args[0]); err != nil {
			s.logger.Fatal("unlocking", zap.Error(err))
		}
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <company-id>",
	Short: "Record an application to a sponsor, which keeps it unlocked for good",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := mustSession(ctx)
		defer s.Close()

		list := s.companies()
		if err := s.apply(ctx, list, args[0]); err != nil {
			s.logger.Fatal("applying", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(applyCmd)
}

// companies projects the whole catalog for the current profile. Without a
// profile every company gets the base score and stays locked.
func (s *session) companies() *companies.Companies {
	current, _ := s.store.Get()
	return companies.Build(s.catalog.Records(), current)
}

// unlock spends one unlock on the company and flips it in list. Applied and
// already unlocked companies are shown without charging the quota.
func (s *session) unlock(ctx context.Context, list *companies.Companies, id string) error {
	s.requireProfile()

	company := list.FindByID(id)
	if company == nil {
		return fmt.Errorf("%w: %s", errUnknownCompany, id)
	}
	log := logger.WithCompany(s.logger, company.ID, company.Name)

	if !company.IsLocked {
		log.Info("company is already unlocked")
		renderCompany(os.Stdout, company)
		return nil
	}

	decision, err := s.gate.TryUnlock(ctx, company.ID)
	if err != nil {
		return err
	}

	if !decision.Unlocked {
		log.Warn("no unlocks left this period",
			zap.String("reason", string(decision.Reason)),
			zap.Int("limit", decision.Limit),
			zap.String("hint", "run `sponsorpath profile upgrade <tier>` or wait for the next period"),
		)
		return nil
	}

	list.Unlock(company.ID)
	renderCompany(os.Stdout, company)
	fmt.Printf("%d unlocks remaining\n", decision.Remaining())
	return nil
}

func (s *session) apply(ctx context.Context, list *companies.Companies, id string) error {
	s.requireProfile()

	company := list.FindByID(id)
	if company == nil {
		return fmt.Errorf("%w: %s", errUnknownCompany, id)
	}
	log := logger.WithCompany(s.logger, company.ID, company.Name)

	added, err := s.tracker.AddApplication(ctx, company.ID)
	if err != nil {
		return err
	}

	list.MarkApplied(company.ID)
	if !added {
		log.Info("already applied to this company")
		return nil
	}

	renderCompany(os.Stdout, company)
	fmt.Printf("applications so far: %d\n", len(s.tracker.Applications()))
	return nil
}
