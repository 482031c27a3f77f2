package carepath

import (
	"fmt"
	"math"
	"sort"

	"carepath/domain/core"
	"carepath/internal/errors"
)

// DistributionKind identifies the sampling distribution for a stage duration.
type DistributionKind string

const (
	KindUniform     DistributionKind = "uniform"
	KindExponential DistributionKind = "exponential"
	KindNormal      DistributionKind = "normal"
	KindLogNormal   DistributionKind = "lognormal"
	KindGamma       DistributionKind = "gamma"
	KindTriangular  DistributionKind = "triangular"
	KindWeibull     DistributionKind = "weibull"
	// KindNoShow is a compound stage: a fixed base duration plus a
	// Bernoulli(p)-gated uniform reschedule delay. Used for no-show and
	// rework/error models.
	KindNoShow DistributionKind = "noshow"
)

// KnownKinds lists every supported distribution kind.
func KnownKinds() []DistributionKind {
	return []DistributionKind{
		KindUniform, KindExponential, KindNormal, KindLogNormal,
		KindGamma, KindTriangular, KindWeibull, KindNoShow,
	}
}

// Params holds the distribution-specific numeric parameters of a stage.
// Only the fields relevant to the stage's kind are read; Validate rejects
// values outside the distribution's support. All durations are hours.
type Params struct {
	Min  float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max  float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Mean float64 `yaml:"mean,omitempty" json:"mean,omitempty"`
	// Sigma is the standard deviation for normal stages and the observed
	// (linear-scale) standard deviation for lognormal stages.
	Sigma float64 `yaml:"sigma,omitempty" json:"sigma,omitempty"`
	Rate  float64 `yaml:"rate,omitempty" json:"rate,omitempty"`
	Shape float64 `yaml:"shape,omitempty" json:"shape,omitempty"`
	Scale float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
	Mode  float64 `yaml:"mode,omitempty" json:"mode,omitempty"`
	// Compound no-show parameters.
	Base          float64 `yaml:"base,omitempty" json:"base,omitempty"`
	Prob          float64 `yaml:"prob,omitempty" json:"prob,omitempty"`
	RescheduleMin float64 `yaml:"reschedule_min,omitempty" json:"reschedule_min,omitempty"`
	RescheduleMax float64 `yaml:"reschedule_max,omitempty" json:"reschedule_max,omitempty"`
}

// StageSpec describes one workflow stage's timing behavior. Constructed once
// from configuration, validated eagerly, immutable thereafter.
type StageSpec struct {
	Name   core.StageName   `yaml:"name" json:"name"`
	Kind   DistributionKind `yaml:"kind" json:"kind"`
	Params Params           `yaml:"params" json:"params"`
}

// NewStageSpec builds a validated stage spec.
func NewStageSpec(name core.StageName, kind DistributionKind, params Params) (StageSpec, error) {
	s := StageSpec{Name: name, Kind: kind, Params: params}
	if err := s.Validate(); err != nil {
		return StageSpec{}, err
	}
	return s, nil
}

// Validate checks the parameters against the distribution's domain. Errors
// identify the offending stage and parameter so a failed run is actionable.
func (s StageSpec) Validate() error {
	if s.Name == "" {
		return errors.ConfigInvalid("stage name cannot be empty")
	}
	p := s.Params
	for _, v := range []float64{p.Min, p.Max, p.Mean, p.Sigma, p.Rate, p.Shape, p.Scale, p.Mode, p.Base, p.Prob, p.RescheduleMin, p.RescheduleMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.ConfigInvalidf("stage %q: parameters must be finite", s.Name)
		}
	}

	switch s.Kind {
	case KindUniform:
		if p.Min > p.Max {
			return errors.ConfigInvalidf("stage %q: uniform requires min <= max (min=%g max=%g)", s.Name, p.Min, p.Max)
		}
		if p.Min < 0 {
			return errors.ConfigInvalidf("stage %q: uniform min must be >= 0 (min=%g)", s.Name, p.Min)
		}
	case KindExponential:
		if p.Rate > 0 && p.Mean > 0 {
			return errors.ConfigInvalidf("stage %q: exponential takes rate or mean, not both", s.Name)
		}
		if p.Rate <= 0 && p.Mean <= 0 {
			return errors.ConfigInvalidf("stage %q: exponential requires rate > 0 or mean > 0", s.Name)
		}
	case KindNormal:
		if p.Sigma < 0 {
			return errors.ConfigInvalidf("stage %q: normal requires sigma >= 0 (sigma=%g)", s.Name, p.Sigma)
		}
	case KindLogNormal:
		if p.Mean <= 0 {
			return errors.ConfigInvalidf("stage %q: lognormal requires mean > 0 (mean=%g)", s.Name, p.Mean)
		}
		if p.Sigma < 0 {
			return errors.ConfigInvalidf("stage %q: lognormal requires sigma >= 0 (sigma=%g)", s.Name, p.Sigma)
		}
	case KindGamma:
		if p.Shape <= 0 || p.Scale <= 0 {
			return errors.ConfigInvalidf("stage %q: gamma requires shape > 0 and scale > 0 (shape=%g scale=%g)", s.Name, p.Shape, p.Scale)
		}
	case KindTriangular:
		if !(p.Min <= p.Mode && p.Mode <= p.Max) {
			return errors.ConfigInvalidf("stage %q: triangular requires min <= mode <= max (min=%g mode=%g max=%g)", s.Name, p.Min, p.Mode, p.Max)
		}
		if p.Min < 0 {
			return errors.ConfigInvalidf("stage %q: triangular min must be >= 0 (min=%g)", s.Name, p.Min)
		}
	case KindWeibull:
		if p.Shape <= 0 || p.Scale <= 0 {
			return errors.ConfigInvalidf("stage %q: weibull requires shape > 0 and scale > 0 (shape=%g scale=%g)", s.Name, p.Shape, p.Scale)
		}
	case KindNoShow:
		if p.Base < 0 {
			return errors.ConfigInvalidf("stage %q: noshow base must be >= 0 (base=%g)", s.Name, p.Base)
		}
		if p.Prob < 0 || p.Prob > 1 {
			return errors.ConfigInvalidf("stage %q: noshow prob must be in [0,1] (prob=%g)", s.Name, p.Prob)
		}
		if p.RescheduleMin > p.RescheduleMax {
			return errors.ConfigInvalidf("stage %q: noshow requires reschedule_min <= reschedule_max (min=%g max=%g)", s.Name, p.RescheduleMin, p.RescheduleMax)
		}
		if p.RescheduleMin < 0 {
			return errors.ConfigInvalidf("stage %q: noshow reschedule_min must be >= 0 (min=%g)", s.Name, p.RescheduleMin)
		}
	default:
		return errors.ConfigInvalidf("stage %q: unknown distribution kind %q", s.Name, s.Kind)
	}
	return nil
}

// Descriptor renders a canonical "name|kind|params" string for fingerprinting.
func (s StageSpec) Descriptor() string {
	return fmt.Sprintf("%s|%s|%+v", s.Name, s.Kind, s.Params)
}

// ScenarioConfig is one named workflow variant: an ordered stage pipeline.
// Order is significant; it fixes both the summing order and the random
// stream consumption order.
type ScenarioConfig struct {
	Name   core.ScenarioName `yaml:"name" json:"name"`
	Stages []StageSpec       `yaml:"stages" json:"stages"`
}

// NewScenarioConfig builds a validated scenario.
func NewScenarioConfig(name core.ScenarioName, stages []StageSpec) (*ScenarioConfig, error) {
	cfg := &ScenarioConfig{Name: name, Stages: stages}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the scenario as a whole: non-empty, unique stage names,
// every stage individually valid.
func (c *ScenarioConfig) Validate() error {
	if c.Name == "" {
		return errors.ConfigInvalid("scenario name cannot be empty")
	}
	if len(c.Stages) == 0 {
		return errors.ConfigInvalidf("scenario %q: at least one stage is required", c.Name)
	}
	seen := make(map[core.StageName]bool, len(c.Stages))
	for _, st := range c.Stages {
		if err := st.Validate(); err != nil {
			return errors.Wrapf(err, "scenario %q", c.Name)
		}
		if seen[st.Name] {
			return errors.ConfigInvalidf("scenario %q: duplicate stage name %q", c.Name, st.Name)
		}
		seen[st.Name] = true
	}
	return nil
}

// StageNames returns the stage names in declaration order.
func (c *ScenarioConfig) StageNames() []core.StageName {
	names := make([]core.StageName, len(c.Stages))
	for i, st := range c.Stages {
		names[i] = st.Name
	}
	return names
}

// Clone deep-copies the scenario so sweep derivations never mutate the base.
func (c *ScenarioConfig) Clone() *ScenarioConfig {
	stages := make([]StageSpec, len(c.Stages))
	copy(stages, c.Stages)
	return &ScenarioConfig{Name: c.Name, Stages: stages}
}

// Hash fingerprints the scenario configuration.
func (c *ScenarioConfig) Hash() core.ConfigHash {
	descriptors := make([]string, len(c.Stages))
	for i, st := range c.Stages {
		descriptors[i] = st.Descriptor()
	}
	return core.ComputeConfigHash(c.Name.String(), descriptors)
}

// SameStageLayout reports whether two scenarios declare the same stage names
// in the same order. Required for stage-level comparison to be meaningful.
func (c *ScenarioConfig) SameStageLayout(other *ScenarioConfig) bool {
	if len(c.Stages) != len(other.Stages) {
		return false
	}
	for i := range c.Stages {
		if c.Stages[i].Name != other.Stages[i].Name {
			return false
		}
	}
	return true
}

// CommonStageNames returns the stage names shared by both scenarios, in this
// scenario's declaration order.
func (c *ScenarioConfig) CommonStageNames(other *ScenarioConfig) []core.StageName {
	present := make(map[core.StageName]bool, len(other.Stages))
	for _, st := range other.Stages {
		present[st.Name] = true
	}
	var common []core.StageName
	for _, st := range c.Stages {
		if present[st.Name] {
			common = append(common, st.Name)
		}
	}
	return common
}

// SortedKindNames returns the kind names used by the scenario, sorted and
// deduplicated. Used for run manifests.
func (c *ScenarioConfig) SortedKindNames() []string {
	set := make(map[string]bool)
	for _, st := range c.Stages {
		set[string(st.Kind)] = true
	}
	kinds := make([]string, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
