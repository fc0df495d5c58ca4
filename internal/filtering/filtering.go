package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/companies"
)

// Filter represents a single filtering step applied to companies.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, deps Deps, v *companies.Companies) (*companies.Companies, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// State holds the user's current filter selection. Empty fields are unconstrained.
type State struct {
	Search     string
	Industries []string
	Location   string
	Routes     []string
}

// IsEmpty reports whether no filter is selected.
func (s State) IsEmpty() bool {
	return s.Search == "" && len(s.Industries) == 0 && s.Location == "" && len(s.Routes) == 0
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Steps builds the filters for the state in the order they are applied:
// search, industry, location and route.
func Steps(state State) []Filter {
	return []Filter{
		NewSearch(state.Search),
		NewIndustries(state.Industries),
		NewLocation(state.Location),
		NewRoutes(state.Routes),
	}
}

// Run executes the supplied filters sequentially and returns the companies left.
// The result is a deep copy: the input list is never modified, even through its items.
func Run(ctx context.Context, deps Deps, steps []Filter, v *companies.Companies) (*companies.Companies, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	v = v.Clone()
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		v = next
	}

	return v, nil
}

// Apply filters the companies by state and orders the result by mode.
// It returns a fresh list and leaves the input untouched.
func Apply(ctx context.Context, deps Deps, v *companies.Companies, state State, mode ViewMode) (*companies.Companies, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown view mode %q", mode)
	}

	filtered, err := Run(ctx, deps, Steps(state), v)
	if err != nil {
		return nil, err
	}

	Order(filtered, mode)
	return filtered, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// String renders the status the way the companies command prints it.
func (s Status) String() string {
	state := "enabled"
	if !s.Enabled {
		state = "disabled"
		if s.Reason != "" {
			state += " (" + s.Reason + ")"
		}
	}

	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(": ")
	b.WriteString(state)
	for _, key := range []string{"search", "industries", "location", "routes"} {
		if value, ok := s.Details[key]; ok {
			fmt.Fprintf(&b, " %s=%q", key, value)
		}
	}
	return b.String()
}
