package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/forecast"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/quickfix"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/reconcile"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string `json:"description"`
	// Start is the initial configuration; nil means the session default.
	Start  *plan.Config     `json:"start,omitempty"`
	Limits *quickfix.Limits `json:"limits,omitempty"`
	Steps  []Step           `json:"steps"`
}

// Step kinds accepted in fixtures.
const (
	StepEdit        = "edit"
	StepSeed        = "seed"
	StepSuggestions = "suggestions"
	StepPreview     = "preview"
	StepQuickFix    = "quickfix"
	StepWeight      = "weight"
	StepLock        = "lock"
	StepReset       = "reset"
)

// Step is one recorded session event.
type Step struct {
	Kind string `json:"kind"`

	// edit: the full replacement configuration.
	Config *plan.Config `json:"config,omitempty"`
	// seed / suggestions: the service payload to merge.
	Suggestions *forecast.SuggestionResponse `json:"suggestions,omitempty"`
	// preview: the service payload to consolidate.
	Preview *forecast.PreviewResponse `json:"preview,omitempty"`
	// quickfix: the conflict code to resolve.
	Code string `json:"code,omitempty"`
	// weight / lock: the target key or field, and the new value.
	Key    string  `json:"key,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Locked bool    `json:"locked,omitempty"`

	Expect *Expect `json:"expect,omitempty"`
}

// Expect is the optional per-step assertion block.
type Expect struct {
	// Decisions maps group name to the expected merge reason.
	Decisions map[string]string     `json:"decisions,omitempty"`
	Dirty     *reconcile.DirtyState `json:"dirty,omitempty"`
	// BlockingIssues is the expected consolidated count after a preview step.
	BlockingIssues *int `json:"blocking_issues,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, step := range f.Steps {
		if err := validateStep(step); err != nil {
			return nil, fmt.Errorf("fixture %s step %d: %w", path, i, err)
		}
	}
	return &f, nil
}

func validateStep(s Step) error {
	switch s.Kind {
	case StepEdit:
		if s.Config == nil {
			return fmt.Errorf("edit step needs a config")
		}
	case StepSeed, StepSuggestions:
		if s.Suggestions == nil {
			return fmt.Errorf("%s step needs a suggestions payload", s.Kind)
		}
	case StepPreview:
		if s.Preview == nil {
			return fmt.Errorf("preview step needs a preview payload")
		}
	case StepQuickFix:
		if s.Code == "" {
			return fmt.Errorf("quickfix step needs a code")
		}
	case StepWeight, StepLock:
		if s.Key == "" {
			return fmt.Errorf("%s step needs a key", s.Kind)
		}
	case StepReset:
	default:
		return fmt.Errorf("unknown step kind %q", s.Kind)
	}
	return nil
}

// #endregion fixture-loader
