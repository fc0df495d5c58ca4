package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/catalog"
	"github.com/spigell/sponsorpath/internal/companies"
	"github.com/spigell/sponsorpath/internal/filtering"
)

const (
	PromptUnlock           = "Unlock a company"
	PromptApply            = "Apply to a company"
	PromptShowList         = "Show the list again"
	PromptReportByIndustry = "Report by industry"
	PromptCompaniesToFile  = "Dump companies to file"
	PromptExit             = "Exit"
	PromptBack             = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptUnlock, PromptApply, PromptShowList, PromptReportByIndustry, PromptCompaniesToFile, PromptExit},
}

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List sponsors scored against your profile",
	Run: func(cmd *cobra.Command, _ []string) {
		listCompanies(cmd)
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)

	companiesCmd.Flags().StringP("search", "s", "", "keep companies whose name contains this text")
	companiesCmd.Flags().StringSlice("industry", nil, "keep companies in these industries (repeatable)")
	companiesCmd.Flags().StringP("location", "l", "", "keep companies whose location contains this text")
	companiesCmd.Flags().StringSlice("route", nil, "keep companies sponsoring these visa routes (repeatable)")
	companiesCmd.Flags().String("view", string(filtering.ViewRanked), "ranked or alphabetical")
	companiesCmd.Flags().BoolP("interactive", "i", false, "open a menu to unlock or apply to the listed companies")
	companiesCmd.Flags().Bool("report", false, "print the companies grouped by industry as json")
	companiesCmd.Flags().Bool("dump", false, "write the companies to a temporary json file")
}

func listCompanies(cmd *cobra.Command) {
	ctx := cmd.Context()
	s := mustSession(ctx)
	defer s.Close()

	state, mode, err := filterStateFromFlags(cmd)
	if err != nil {
		s.logger.Fatal("reading filters", zap.Error(err))
	}

	if _, ok := s.store.Get(); !ok {
		s.logger.Info("no profile yet, companies are not personalised",
			zap.String("hint", "run `sponsorpath profile onboard`"),
		)
	}

	list, err := filtering.Apply(ctx, filtering.Deps{Logger: s.logger}, s.companies(), state, mode)
	if err != nil {
		s.logger.Fatal("filtering companies", zap.Error(err))
	}

	for _, status := range filtering.Describe(filtering.Steps(state)) {
		s.logger.Debug(status.String())
	}

	s.logger.Info("companies found", zap.Int("count", list.Len()), zap.String("view", string(mode)))
	if list.Len() == 0 {
		if !state.IsEmpty() {
			s.logger.Info("no company matches the filters", noMatchHint(s.catalog)...)
		}
		return
	}

	if err := renderCompanies(os.Stdout, list); err != nil {
		s.logger.Fatal("printing companies", zap.Error(err))
	}

	if flag, _ := cmd.Flags().GetBool("report"); flag {
		if err := handleAction(ctx, s, PromptReportByIndustry, list); err != nil {
			s.logger.Fatal("reporting", zap.Error(err))
		}
	}

	if flag, _ := cmd.Flags().GetBool("dump"); flag {
		if err := handleAction(ctx, s, PromptCompaniesToFile, list); err != nil {
			s.logger.Fatal("dumping", zap.Error(err))
		}
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive {
		return
	}

	for {
		fmt.Printf("%d unlocks remaining\n", s.gate.Remaining())

		_, action, err := prompt.Run()
		if err != nil {
			s.logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, s, action, list); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			s.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// noMatchHint lists the values the location and route filters can match.
func noMatchHint(c *catalog.Catalog) []zap.Field {
	return []zap.Field{
		zap.Strings("known_locations", c.Towns()),
		zap.Strings("known_routes", c.Routes()),
	}
}

func filterStateFromFlags(cmd *cobra.Command) (filtering.State, filtering.ViewMode, error) {
	flags := cmd.Flags()

	search, _ := flags.GetString("search")
	industries, _ := flags.GetStringSlice("industry")
	location, _ := flags.GetString("location")
	routes, _ := flags.GetStringSlice("route")
	view, _ := flags.GetString("view")

	mode, err := filtering.ParseViewMode(view)
	if err != nil {
		return filtering.State{}, "", err
	}

	return filtering.State{
		Search:     search,
		Industries: industries,
		Location:   location,
		Routes:     routes,
	}, mode, nil
}

func handleAction(ctx context.Context, s *session, action string, list *companies.Companies) error {
	switch action {
	case PromptUnlock:
		return pickAndRun(list, func(c *companies.Company) bool { return c.IsLocked }, func(id string) error {
			return s.unlock(ctx, list, id)
		})
	case PromptApply:
		return pickAndRun(list, func(c *companies.Company) bool { return !c.HasApplied }, func(id string) error {
			return s.apply(ctx, list, id)
		})
	case PromptShowList:
		return renderCompanies(os.Stdout, list)
	case PromptReportByIndustry:
		pretty, _ := json.MarshalIndent(list.ReportByIndustry(), "", "  ")
		fmt.Println(string(pretty))
		s.logger.Info("report by industry", zap.Int("companies count", list.Len()))
		return nil
	case PromptCompaniesToFile:
		filename, err := list.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump companies to file: %w", err)
		}
		s.logger.Info("dumping companies to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		s.logger.Debug("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// pickAndRun lets the user choose one of the companies matching eligible and
// runs fn on it, until they go back.
func pickAndRun(list *companies.Companies, eligible func(*companies.Company) bool, fn func(id string) error) error {
	for {
		items := make([]string, 0, list.Len()+1)
		for _, c := range list.Items {
			if eligible(c) {
				items = append(items, companyLabel(c))
			}
		}

		if len(items) == 0 {
			fmt.Println("nothing to choose from")
			return nil
		}

		companyPrompt := promptui.Select{
			Label: "Choose a company and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		_, selected, err := companyPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		if err := fn(strings.Split(selected, " ")[0]); err != nil {
			return err
		}
	}
}
