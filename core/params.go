package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Metric selects the fitness formula.
type Metric string

const (
	MetricBenefitWeight Metric = "maximize_benefit_weight"
	MetricBenefit       Metric = "maximize_benefit"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.TrimSpace(s)); m {
	case MetricBenefitWeight, MetricBenefit:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
}

// SelectionMethod names a parent selection strategy.
type SelectionMethod string

const (
	SelectionTournament SelectionMethod = "tournament"
	SelectionRoulette   SelectionMethod = "roulette"
)

func ParseSelectionMethod(s string) (SelectionMethod, error) {
	switch m := SelectionMethod(strings.TrimSpace(s)); m {
	case SelectionTournament, SelectionRoulette:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSelectionMethod, s)
}

// CrossoverMethod names a recombination operator.
type CrossoverMethod string

const (
	CrossoverSinglePoint CrossoverMethod = "single_point"
	CrossoverTwoPoint    CrossoverMethod = "two_point"
)

func ParseCrossoverMethod(s string) (CrossoverMethod, error) {
	switch m := CrossoverMethod(strings.TrimSpace(s)); m {
	case CrossoverSinglePoint, CrossoverTwoPoint:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown crossover %q", ErrInvalidParams, s)
}

// PenaltyPolicy decides how over-capacity genomes are scored.
type PenaltyPolicy string

const (
	// PenaltySoft discounts fitness by the excess-item ratio.
	PenaltySoft PenaltyPolicy = "soft"
	// PenaltyHard scores every over-capacity genome as 0.
	PenaltyHard PenaltyPolicy = "hard"
)

func ParsePenaltyPolicy(s string) (PenaltyPolicy, error) {
	switch p := PenaltyPolicy(strings.TrimSpace(s)); p {
	case PenaltySoft, PenaltyHard:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown penalty policy %q", ErrInvalidParams, s)
}

// Params configures one GA run. It is immutable for the duration of the run.
type Params struct {
	PopulationSize  int             `json:"population_size" yaml:"population_size" validate:"gte=1"`
	CrossoverRate   float64         `json:"crossover_rate" yaml:"crossover_rate" validate:"gte=0,lte=1"`
	MutationRate    float64         `json:"mutation_rate" yaml:"mutation_rate" validate:"gte=0,lte=1"`
	NumGenerations  int             `json:"num_generations" yaml:"num_generations" validate:"gte=0"`
	Selection       SelectionMethod `json:"selection" yaml:"selection"`
	TournamentSize  int             `json:"tournament_size" yaml:"tournament_size" validate:"gte=0"`
	Elitism         bool            `json:"elitism" yaml:"elitism"`
	Metric          Metric          `json:"metric" yaml:"metric"`
	Crossover       CrossoverMethod `json:"crossover" yaml:"crossover"`
	Penalty         PenaltyPolicy   `json:"penalty" yaml:"penalty"`
	StrictSelection bool            `json:"strict_selection" yaml:"strict_selection"`
	CacheSize       int             `json:"cache_size" yaml:"cache_size" validate:"gte=0"`
	Seed            uint64          `json:"seed" yaml:"seed"`
}

// DefaultParams mirrors the reference run: 100 candidates, 100 generations,
// tournament of 5 with elitism.
func DefaultParams() Params {
	return Params{
		PopulationSize: 100,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
		NumGenerations: 100,
		Selection:      SelectionTournament,
		TournamentSize: 5,
		Elitism:        true,
		Metric:         MetricBenefitWeight,
		Crossover:      CrossoverTwoPoint,
		Penalty:        PenaltySoft,
	}
}

// WithDefaults fills empty enum fields from DefaultParams. Numeric fields are
// left alone because zero is a meaningful rate.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.Selection == "" {
		p.Selection = d.Selection
	}
	if p.Metric == "" {
		p.Metric = d.Metric
	}
	if p.Crossover == "" {
		p.Crossover = d.Crossover
	}
	if p.Penalty == "" {
		p.Penalty = d.Penalty
	}
	if p.Selection == SelectionTournament && p.TournamentSize == 0 {
		p.TournamentSize = min(d.TournamentSize, p.PopulationSize)
	}
	return p
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate fails fast on unknown enum values and out-of-range numbers.
func (p Params) Validate() error {
	if _, err := ParseMetric(string(p.Metric)); err != nil {
		return err
	}
	if _, err := ParseSelectionMethod(string(p.Selection)); err != nil {
		return err
	}
	if _, err := ParseCrossoverMethod(string(p.Crossover)); err != nil {
		return err
	}
	if _, err := ParsePenaltyPolicy(string(p.Penalty)); err != nil {
		return err
	}
	if err := ValidateStruct(p); err != nil {
		return err
	}
	if p.Selection == SelectionTournament {
		if p.TournamentSize < 1 || p.TournamentSize > p.PopulationSize {
			return fmt.Errorf("%w: tournament_size must be in [1, %d], got %d",
				ErrInvalidParams, p.PopulationSize, p.TournamentSize)
		}
	}
	return nil
}

// ValidateStruct checks the validate tags of v. Field names in messages use
// the yaml tag. Failures wrap ErrInvalidParams.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
