package experiment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PlanEnv overrides the plan path given to NewLoader.
const PlanEnv = "KNAPSACK_PLAN"

// DefaultPlanPath is read when neither NewLoader nor PlanEnv names a file.
const DefaultPlanPath = "plan.yaml"

// Loader handles loading experiment plans
type Loader struct {
	planPath string
}

// NewLoader creates a new plan loader
func NewLoader(planPath string) *Loader {
	return &Loader{
		planPath: planPath,
	}
}

// Path returns the path LoadPlan reads, after the environment override
func (l *Loader) Path() string {
	if planPath := os.Getenv(PlanEnv); planPath != "" {
		return planPath
	}
	if l.planPath == "" {
		return DefaultPlanPath
	}
	return l.planPath
}

// implicit reports whether Path falls back to DefaultPlanPath.
func (l *Loader) implicit() bool {
	return l.planPath == "" && os.Getenv(PlanEnv) == ""
}

// LoadPlan loads the plan file. Only a missing DefaultPlanPath yields
// DefaultPlan; a named file that does not exist is an error.
func (l *Loader) LoadPlan() (*Plan, error) {
	path := l.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && l.implicit() {
			return DefaultPlan(), nil
		}
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}

	plan, err := LoadPlanFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}

// LoadPlanFromBytes parses a YAML plan. Defaults absent from the document
// keep the values of core.DefaultParams.
func LoadPlanFromBytes(data []byte) (*Plan, error) {
	plan := DefaultPlan()
	plan.Tests = nil
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("failed to parse YAML plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// SavePlan writes plan as YAML
func (l *Loader) SavePlan(plan *Plan) error {
	path := l.Path()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}

	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}
