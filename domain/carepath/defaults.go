package carepath

import "carepath/domain/core"

// Built-in scenario bundles. The legacy/orchestrator pair models a six-stage
// imaging-to-appointment care path; delays are lognormal for human-paced
// stages and normal for machine-paced ones. Parameters are hours.
//
// The baseline bundles (FIFO, rule-based, partial automation) are alternate
// "before" variants for scenario-bundle sweeps. They use a seven-stage layout
// that exercises the full distribution family, calibrated to mean total
// latencies of roughly 15.5, 11.2 and 9.1 days respectively.

func mustScenario(name core.ScenarioName, stages []StageSpec) *ScenarioConfig {
	cfg, err := NewScenarioConfig(name, stages)
	if err != nil {
		panic(err) // built-in configurations are validated by tests
	}
	return cfg
}

// LegacyScenario is the manual care-coordination workflow.
func LegacyScenario() *ScenarioConfig {
	return mustScenario("legacy", []StageSpec{
		{Name: "radiology_report", Kind: KindLogNormal, Params: Params{Mean: 4.0, Sigma: 0.5}},
		{Name: "pcp_acknowledgment", Kind: KindLogNormal, Params: Params{Mean: 48.0, Sigma: 1.0}},
		{Name: "referral_generation", Kind: KindLogNormal, Params: Params{Mean: 72.0, Sigma: 0.8}},
		{Name: "prior_auth_prep", Kind: KindLogNormal, Params: Params{Mean: 96.0, Sigma: 0.5}},
		{Name: "payer_decision", Kind: KindLogNormal, Params: Params{Mean: 120.0, Sigma: 0.4}},
		{Name: "scheduling", Kind: KindLogNormal, Params: Params{Mean: 168.0, Sigma: 0.6}},
	})
}

// OrchestratorScenario is the AI-assisted workflow. The radiologist and the
// payer remain human bottlenecks; coordination stages run at machine speed.
func OrchestratorScenario() *ScenarioConfig {
	return mustScenario("orchestrator", []StageSpec{
		{Name: "radiology_report", Kind: KindLogNormal, Params: Params{Mean: 4.0, Sigma: 0.5}},
		{Name: "pcp_acknowledgment", Kind: KindLogNormal, Params: Params{Mean: 2.0, Sigma: 0.2}},
		{Name: "referral_generation", Kind: KindNormal, Params: Params{Mean: 0.05, Sigma: 0.01}},
		{Name: "prior_auth_prep", Kind: KindNormal, Params: Params{Mean: 0.1, Sigma: 0.01}},
		{Name: "payer_decision", Kind: KindLogNormal, Params: Params{Mean: 120.0, Sigma: 0.4}},
		{Name: "scheduling", Kind: KindLogNormal, Params: Params{Mean: 24.0, Sigma: 4.0}},
	})
}

// FIFOScenario is first-in-first-out triage without intelligent routing.
func FIFOScenario() *ScenarioConfig {
	return mustScenario("fifo", []StageSpec{
		{Name: "radiology_report", Kind: KindUniform, Params: Params{Min: 2, Max: 6}},
		{Name: "pcp_acknowledgment", Kind: KindExponential, Params: Params{Mean: 36}},
		{Name: "referral_processing", Kind: KindNormal, Params: Params{Mean: 48, Sigma: 12}},
		{Name: "prior_authorization", Kind: KindGamma, Params: Params{Shape: 4, Scale: 18}},
		{Name: "payer_review", Kind: KindTriangular, Params: Params{Min: 48, Mode: 96, Max: 192}},
		{Name: "specialist_scheduling", Kind: KindWeibull, Params: Params{Shape: 1.5, Scale: 88}},
		{Name: "patient_confirmation", Kind: KindNoShow, Params: Params{Base: 12, Prob: 0.15, RescheduleMin: 24, RescheduleMax: 72}},
	})
}

// RuleBasedScenario is keyword-and-template automation without ML.
func RuleBasedScenario() *ScenarioConfig {
	return mustScenario("rule_based", []StageSpec{
		{Name: "radiology_report", Kind: KindUniform, Params: Params{Min: 2, Max: 6}},
		{Name: "pcp_acknowledgment", Kind: KindExponential, Params: Params{Mean: 24}},
		{Name: "referral_processing", Kind: KindNormal, Params: Params{Mean: 24, Sigma: 6}},
		{Name: "prior_authorization", Kind: KindGamma, Params: Params{Shape: 4, Scale: 12}},
		{Name: "payer_review", Kind: KindTriangular, Params: Params{Min: 48, Mode: 84, Max: 156}},
		{Name: "specialist_scheduling", Kind: KindWeibull, Params: Params{Shape: 1.8, Scale: 78}},
		{Name: "patient_confirmation", Kind: KindNoShow, Params: Params{Base: 8, Prob: 0.12, RescheduleMin: 24, RescheduleMax: 48}},
	})
}

// PartialAutomationScenario is a hybrid with EHR integration and e-PA.
func PartialAutomationScenario() *ScenarioConfig {
	return mustScenario("partial_automation", []StageSpec{
		{Name: "radiology_report", Kind: KindUniform, Params: Params{Min: 2, Max: 6}},
		{Name: "pcp_acknowledgment", Kind: KindExponential, Params: Params{Mean: 12}},
		{Name: "referral_processing", Kind: KindNormal, Params: Params{Mean: 8, Sigma: 2}},
		{Name: "prior_authorization", Kind: KindGamma, Params: Params{Shape: 3, Scale: 10}},
		{Name: "payer_review", Kind: KindTriangular, Params: Params{Min: 48, Mode: 72, Max: 144}},
		{Name: "specialist_scheduling", Kind: KindWeibull, Params: Params{Shape: 2.0, Scale: 75}},
		{Name: "patient_confirmation", Kind: KindNoShow, Params: Params{Base: 6, Prob: 0.10, RescheduleMin: 12, RescheduleMax: 36}},
	})
}

// BuiltinScenario resolves a built-in scenario by name.
func BuiltinScenario(name core.ScenarioName) (*ScenarioConfig, bool) {
	switch name {
	case "legacy":
		return LegacyScenario(), true
	case "orchestrator":
		return OrchestratorScenario(), true
	case "fifo":
		return FIFOScenario(), true
	case "rule_based":
		return RuleBasedScenario(), true
	case "partial_automation":
		return PartialAutomationScenario(), true
	}
	return nil, false
}

// BuiltinScenarioNames lists the built-in scenario names.
func BuiltinScenarioNames() []core.ScenarioName {
	return []core.ScenarioName{"legacy", "orchestrator", "fifo", "rule_based", "partial_automation"}
}
