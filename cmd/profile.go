package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/catalog"
	"github.com/spigell/sponsorpath/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and change your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current profile",
	Run: func(cmd *cobra.Command, _ []string) {
		s := mustSession(cmd.Context())
		defer s.Close()

		current := s.requireProfile()

		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			pretty, _ := json.MarshalIndent(current, "", "  ")
			fmt.Println(string(pretty))
			return
		}

		if err := renderProfile(os.Stdout, current); err != nil {
			s.logger.Fatal("printing profile", zap.Error(err))
		}
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile fields, e.g. --set industries=Technology,Finance",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		s := mustSession(ctx)
		defer s.Close()

		patch, err := patchFromFlags(cmd)
		if err != nil {
			s.logger.Fatal("reading profile changes", zap.Error(err))
		}
		if patch.IsEmpty() {
			s.logger.Fatal("nothing to update", zap.String("hint", "pass --set key=value or --file patch.yaml"))
		}

		// Only onboarding may create the profile.
		s.requireProfile()

		updated, err := s.store.Update(ctx, patch)
		if err != nil {
			s.logger.Fatal("updating profile", zap.Error(err))
		}
		s.logger.Info("profile updated")

		if err := renderProfile(os.Stdout, updated); err != nil {
			s.logger.Fatal("printing profile", zap.Error(err))
		}
	},
}

var profileOnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Create your profile, asking for the details used to score sponsors",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		s := mustSession(ctx)
		defer s.Close()

		patch, err := patchFromFlags(cmd)
		if err != nil {
			s.logger.Fatal("reading profile changes", zap.Error(err))
		}

		if patch.IsEmpty() {
			base, ok := s.store.Get()
			if !ok {
				base = s.store.Defaults()
			}
			patch, err = askOnboarding(base)
			if err != nil {
				s.logger.Fatal("onboarding", zap.Error(err))
			}
		}

		onboarded, err := s.store.CompleteOnboarding(ctx, patch)
		if err != nil {
			s.logger.Fatal("completing onboarding", zap.Error(err))
		}
		s.logger.Info("onboarding complete", zap.String("name", onboarded.FullName))

		if err := renderProfile(os.Stdout, onboarded); err != nil {
			s.logger.Fatal("printing profile", zap.Error(err))
		}
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the profile with the defaults",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		s := mustSession(ctx)
		defer s.Close()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirm := promptui.Prompt{Label: "Reset the profile, applications and unlocks", IsConfirm: true}
			if _, err := confirm.Run(); err != nil {
				s.logger.Info("exiting", zap.String("reason", "reset not confirmed"))
				return
			}
		}

		if _, err := s.store.Reset(ctx); err != nil {
			s.logger.Fatal("resetting profile", zap.Error(err))
		}
	},
}

var profileUpgradeCmd = &cobra.Command{
	Use:       "upgrade <tier>",
	Short:     "Switch plan: Free, Basic, Pro or Unlimited",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"Free", "Basic", "Pro", "Unlimited"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := mustSession(ctx)
		defer s.Close()

		tier, err := profile.ParseTier(args[0])
		if err != nil {
			s.logger.Fatal("choosing plan", zap.Error(err))
		}

		updated, err := s.gate.Upgrade(ctx, tier)
		if err != nil {
			s.logger.Fatal("changing plan", zap.Error(err))
		}

		fmt.Printf("plan: %s, unlocks: %s\n", updated.SubscriptionTier, quotaLabel(updated))
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profileOnboardCmd, profileResetCmd, profileUpgradeCmd)

	profileShowCmd.Flags().Bool("output-json", false, "print the stored json snapshot")

	for _, cmd := range []*cobra.Command{profileUpdateCmd, profileOnboardCmd} {
		cmd.Flags().StringArray("set", nil, "key=value pair, lists are comma separated (repeatable)")
		cmd.Flags().StringP("file", "f", "", "yaml or json file with profile fields")
	}

	profileResetCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func patchFromFlags(cmd *cobra.Command) (profile.Patch, error) {
	values := map[string]any{}

	if file, _ := cmd.Flags().GetString("file"); file != "" {
		fromFile, err := readPatchFile(file)
		if err != nil {
			return profile.Patch{}, err
		}
		maps.Copy(values, fromFile)
	}

	pairs, _ := cmd.Flags().GetStringArray("set")
	fromPairs, err := parseSetPairs(pairs)
	if err != nil {
		return profile.Patch{}, err
	}
	maps.Copy(values, fromPairs)

	patch, err := profile.DecodePatch(values)
	if err != nil {
		return profile.Patch{}, err
	}
	return patch, patch.Validate()
}

// parseSetPairs turns key=value arguments into a map. The value may contain '='.
func parseSetPairs(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", pair)
		}
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}

// readPatchFile reads profile fields with a dedicated viper instance, so yaml, json and toml all work.
func readPatchFile(path string) (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	return v.AllSettings(), nil
}

// askOnboarding walks through the onboarding questions, offering the current values as defaults.
func askOnboarding(base profile.UserProfile) (profile.Patch, error) {
	questions := []struct {
		key     string
		label   string
		current string
	}{
		{"fullName", "Full name", base.FullName},
		{"email", "Email", base.Email},
		{"currentJobTitle", "Current job title", base.CurrentJobTitle},
		{"yearsExperience", "Years of experience", base.YearsExperience},
		{"qualification", "Highest qualification", base.Qualification},
		{"desiredJobTitle", "Desired job title", base.DesiredJobTitle},
		{"industries", "Industries (" + strings.Join(catalog.Industries, ", ") + ")", strings.Join(base.Industries, ",")},
		{"locations", "Preferred locations, comma separated", strings.Join(base.Locations, ",")},
		{"skills", "Skills, most important first", strings.Join(base.Skills, ",")},
	}

	values := make(map[string]any, len(questions))
	for _, q := range questions {
		p := promptui.Prompt{Label: q.label, Default: q.current, AllowEdit: true}
		answer, err := p.Run()
		if err != nil {
			return profile.Patch{}, err
		}
		values[q.key] = strings.TrimSpace(answer)
	}

	return profile.DecodePatch(values)
}

