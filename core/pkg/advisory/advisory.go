// Package advisory turns district conditions into planting advice for a crop.
package advisory

import (
	"sort"
	"strings"
)

// PestRisk is the pest pressure reported for a district
type PestRisk string

const (
	PestLow    PestRisk = "low"
	PestMedium PestRisk = "medium"
	PestHigh   PestRisk = "high"
)

// Conditions are the current readings for a district
type Conditions struct {
	RainfallMM   float64  `json:"rainfall" yaml:"rainfall"`
	NDVI         float64  `json:"ndvi" yaml:"ndvi"`
	PestRisk     PestRisk `json:"pestRisk" yaml:"pestRisk"`
	TemperatureC float64  `json:"temperature" yaml:"temperature"`
}

// DefaultDistrict keys the conditions used for districts without readings
const DefaultDistrict = "Default"

// NormalAdvice is returned when no rule fires
const NormalAdvice = "✅ Normal conditions - proceed with planting"

// Rule emits Message when Applies holds for the district conditions
type Rule struct {
	Applies func(Conditions) bool
	Message string
}

// Engine evaluates crop rules against district conditions
type Engine struct {
	conditions map[string]Conditions
	rules      map[string][]Rule
}

// NewEngine builds an engine. Crop keys are matched case-insensitively
// and conditions must contain DefaultDistrict.
func NewEngine(conditions map[string]Conditions, rules map[string][]Rule) *Engine {
	e := &Engine{
		conditions: make(map[string]Conditions, len(conditions)),
		rules:      make(map[string][]Rule, len(rules)),
	}
	for d, c := range conditions {
		e.conditions[d] = c
	}
	for crop, rs := range rules {
		e.rules[strings.ToLower(crop)] = rs
	}
	return e
}

// Default returns the engine with the built-in district readings and crop rules
func Default() *Engine {
	return NewEngine(DefaultConditions(), DefaultRules())
}

// ConditionsFor returns the readings for district, falling back to DefaultDistrict
func (e *Engine) ConditionsFor(district string) Conditions {
	if c, ok := e.conditions[district]; ok {
		return c
	}
	return e.conditions[DefaultDistrict]
}

// Advice returns every message whose rule fires for crop in district,
// in rule order. It never returns an empty slice.
func (e *Engine) Advice(district, crop string) []string {
	current := e.ConditionsFor(district)

	var advice []string
	for _, r := range e.rules[strings.ToLower(strings.TrimSpace(crop))] {
		if r.Applies(current) {
			advice = append(advice, r.Message)
		}
	}
	if len(advice) == 0 {
		return []string{NormalAdvice}
	}
	return advice
}

// Crops lists the crops that have rules, sorted
func (e *Engine) Crops() []string {
	out := make([]string, 0, len(e.rules))
	for c := range e.rules {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Advice evaluates the built-in rules
func Advice(district, crop string) []string {
	return Default().Advice(district, crop)
}
