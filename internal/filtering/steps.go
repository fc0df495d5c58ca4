package filtering

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/companies"
)

const noConstraintMsg = "no constraint selected"

// toggle carries the enabled state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) Validate() error { return nil }

func newToggle(constrained bool) toggle {
	if constrained {
		return toggle{}
	}
	return toggle{disabled: true, reason: noConstraintMsg}
}

type searchFilter struct {
	toggle
	query string
}

// NewSearch creates a filter that keeps companies whose name contains the query, ignoring case.
func NewSearch(query string) Filter {
	return &searchFilter{toggle: newToggle(query != ""), query: query}
}

func (f *searchFilter) Name() string { return "search" }

func (f *searchFilter) Apply(_ context.Context, deps Deps, v *companies.Companies) (*companies.Companies, Step, error) {
	needle := strings.ToLower(f.query)
	next, excluded := v.Exclude(func(c *companies.Company) bool {
		return !strings.Contains(strings.ToLower(c.Name), needle)
	})
	logExcluded(deps, "excluding companies not matching the search", excluded, next, zap.String("search", f.query))
	return next, step(v, next, excluded), nil
}

func (f *searchFilter) Status() Status {
	return f.status(f.Name(), map[string]string{"search": f.query})
}

type industriesFilter struct {
	toggle
	industries []string
}

// NewIndustries creates a filter that keeps companies whose industry is one of the selected ones.
func NewIndustries(industries []string) Filter {
	return &industriesFilter{toggle: newToggle(len(industries) > 0), industries: slices.Clone(industries)}
}

func (f *industriesFilter) Name() string { return "industry" }

func (f *industriesFilter) Apply(_ context.Context, deps Deps, v *companies.Companies) (*companies.Companies, Step, error) {
	next, excluded := v.Exclude(func(c *companies.Company) bool {
		return !slices.Contains(f.industries, c.Industry)
	})
	logExcluded(deps, "excluding companies by industry", excluded, next, zap.Strings("industries", f.industries))
	return next, step(v, next, excluded), nil
}

func (f *industriesFilter) Status() Status {
	return f.status(f.Name(), map[string]string{"industries": strings.Join(f.industries, ",")})
}

type locationFilter struct {
	toggle
	location string
}

// NewLocation creates a filter that keeps companies whose location contains the value, ignoring case.
func NewLocation(location string) Filter {
	return &locationFilter{toggle: newToggle(location != ""), location: location}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Apply(_ context.Context, deps Deps, v *companies.Companies) (*companies.Companies, Step, error) {
	needle := strings.ToLower(f.location)
	next, excluded := v.Exclude(func(c *companies.Company) bool {
		return !strings.Contains(strings.ToLower(c.Location), needle)
	})
	logExcluded(deps, "excluding companies by location", excluded, next, zap.String("location", f.location))
	return next, step(v, next, excluded), nil
}

func (f *locationFilter) Status() Status {
	return f.status(f.Name(), map[string]string{"location": f.location})
}

type routesFilter struct {
	toggle
	routes []string
}

// NewRoutes creates a filter that keeps companies sponsoring at least one of the selected visa routes.
func NewRoutes(routes []string) Filter {
	return &routesFilter{toggle: newToggle(len(routes) > 0), routes: slices.Clone(routes)}
}

func (f *routesFilter) Name() string { return "route" }

func (f *routesFilter) Apply(_ context.Context, deps Deps, v *companies.Companies) (*companies.Companies, Step, error) {
	next, excluded := v.Exclude(func(c *companies.Company) bool {
		return !slices.ContainsFunc(c.Routes, func(route string) bool {
			return slices.Contains(f.routes, route)
		})
	})
	logExcluded(deps, "excluding companies by visa route", excluded, next, zap.Strings("routes", f.routes))
	return next, step(v, next, excluded), nil
}

func (f *routesFilter) Status() Status {
	return f.status(f.Name(), map[string]string{"routes": strings.Join(f.routes, ",")})
}

func (t *toggle) status(name string, details map[string]string) Status {
	if t.disabled {
		return Status{Name: name, Enabled: false, Reason: t.reason}
	}
	return Status{Name: name, Enabled: true, Details: details}
}

func step(before, after *companies.Companies, excluded []string) Step {
	return Step{Initial: before.Len(), Dropped: len(excluded), Left: after.Len()}
}

func logExcluded(deps Deps, msg string, excluded []string, left *companies.Companies, fields ...zap.Field) {
	if deps.Logger == nil || len(excluded) == 0 {
		return
	}
	fields = append(fields,
		zap.Strings("excluded_companies", excluded),
		zap.Int("companies_left", left.Len()),
	)
	deps.Logger.Debug(msg, fields...)
}
