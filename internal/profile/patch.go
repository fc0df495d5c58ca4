package profile

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Patch is a sparse UserProfile: nil fields are left untouched by Update.
// An empty non-nil slice clears the corresponding set, except for Applications.
type Patch struct {
	FullName        *string `mapstructure:"fullName"`
	Email           *string `mapstructure:"email"`
	CurrentJobTitle *string `mapstructure:"currentJobTitle"`
	YearsExperience *string `mapstructure:"yearsExperience"`
	Qualification   *string `mapstructure:"qualification"`
	DesiredJobTitle *string `mapstructure:"desiredJobTitle"`

	Industries *[]string `mapstructure:"industries"`
	Locations  *[]string `mapstructure:"locations"`
	Skills     *[]string `mapstructure:"skills"`

	IsOnboarded *bool `mapstructure:"isOnboarded"`

	SubscriptionTier *Tier `mapstructure:"subscriptionTier" validate:"omitempty,oneof=Free Basic Pro Unlimited"`
	MatchesUsed      *int  `mapstructure:"matchesUsed" validate:"omitempty,gte=0"`
	MatchesLimit     *int  `mapstructure:"matchesLimit" validate:"omitempty,gte=0"`

	// Applications are added to the existing set, never replace it.
	Applications *[]string `mapstructure:"applications"`
	Interviews   *int      `mapstructure:"interviews" validate:"omitempty,gte=0"`
}

// Validate checks counters and the tier of the patch.
func (p *Patch) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// DecodePatch builds a Patch from loosely typed values such as CLI pairs or a YAML document.
// Comma separated strings are accepted for list fields.
func DecodePatch(values map[string]any) (Patch, error) {
	var patch Patch

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &patch,
	})
	if err != nil {
		return patch, fmt.Errorf("creating patch decoder: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return patch, fmt.Errorf("decoding profile patch: %w", err)
	}

	if patch.SubscriptionTier != nil {
		tier, err := ParseTier(string(*patch.SubscriptionTier))
		if err != nil {
			return patch, err
		}
		patch.SubscriptionTier = &tier
	}

	return patch, nil
}

// apply merges the non-nil fields of the patch into dst.
func (p Patch) apply(dst *UserProfile) {
	setString(&dst.FullName, p.FullName)
	setString(&dst.Email, p.Email)
	setString(&dst.CurrentJobTitle, p.CurrentJobTitle)
	setString(&dst.YearsExperience, p.YearsExperience)
	setString(&dst.Qualification, p.Qualification)
	setString(&dst.DesiredJobTitle, p.DesiredJobTitle)

	setStrings(&dst.Industries, p.Industries)
	setStrings(&dst.Locations, p.Locations)
	setStrings(&dst.Skills, p.Skills)
	addStrings(&dst.Applications, p.Applications)

	if p.IsOnboarded != nil {
		dst.IsOnboarded = *p.IsOnboarded
	}
	if p.SubscriptionTier != nil {
		dst.SubscriptionTier = *p.SubscriptionTier
	}
	if p.MatchesUsed != nil {
		dst.MatchesUsed = *p.MatchesUsed
	}
	if p.MatchesLimit != nil {
		dst.MatchesLimit = *p.MatchesLimit
	}
	if p.Interviews != nil {
		dst.Interviews = *p.Interviews
	}
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

func setStrings(dst *[]string, value *[]string) {
	if value != nil {
		*dst = cloneStrings(*value)
	}
}

func addStrings(dst *[]string, value *[]string) {
	if value == nil {
		return
	}
	merged := cloneStrings(*dst)
	for _, v := range *value {
		if !slices.Contains(merged, v) {
			merged = append(merged, v)
		}
	}
	*dst = merged
}

// Ptr returns a pointer to v. Handy when building patches.
func Ptr[T any](v T) *T {
	return &v
}
