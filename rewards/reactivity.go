// Package rewards holds the pure settlement computations: the skill
// reactivity calculator and the reward policy resolver. Persistence lives in
// the services layer.
package rewards

import (
	"fmt"
	"math"
	"sort"
)

const (
	// Reactivity bounds keep heavily weighted skills from swinging without
	// limit and lightly weighted ones from going dead.
	MinReactivity = 0.1
	MaxReactivity = 5.0

	// Configured weights are meant to sum to 1.0; deviations beyond this
	// tolerance are surfaced as audit warnings.
	weightSumTolerance = 0.01
)

// Reactivity is the bounded per-skill multiplier set applied to base skill
// deltas, plus any audit warnings found in the weight configuration.
// Warnings never invalidate the result: the multipliers are always defined.
type Reactivity struct {
	Multipliers map[string]float64
	Warnings    []string
}

// For returns the multiplier for a skill, defaulting to 1.0 for skills the
// configuration does not mention.
func (r Reactivity) For(skill string) float64 {
	if m, ok := r.Multipliers[skill]; ok {
		return m
	}
	return 1.0
}

// ComputeReactivity normalizes a skill-weight distribution into clamped
// per-skill multipliers: weight divided by the mean weight, bounded to
// [MinReactivity, MaxReactivity]. An empty weight map is the legacy uniform
// configuration: every tested skill reacts at 1.0.
func ComputeReactivity(weights map[string]float64, testedSkills []string) Reactivity {
	result := Reactivity{Multipliers: make(map[string]float64, len(testedSkills))}

	if len(weights) == 0 {
		for _, skill := range testedSkills {
			result.Multipliers[skill] = 1.0
		}
		return result
	}

	sum := 0.0
	for _, skill := range sortedKeys(weights) {
		w := weights[skill]
		sum += w
		if w <= 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skill %q has non-positive weight %.4f", skill, w))
		}
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("skill weights sum to %.4f, expected 1.0 ±%.2f", sum, weightSumTolerance))
	}

	tested := make(map[string]bool, len(testedSkills))
	for _, skill := range testedSkills {
		tested[skill] = true
		if _, ok := weights[skill]; !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("tested skill %q has no configured weight", skill))
		}
	}
	for _, skill := range sortedKeys(weights) {
		if len(testedSkills) > 0 && !tested[skill] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("weighted skill %q is not in the tested-skill set", skill))
		}
	}

	avg := sum / float64(len(weights))
	for skill, w := range weights {
		if avg == 0 {
			result.Multipliers[skill] = 1.0
			continue
		}
		result.Multipliers[skill] = clamp(w/avg, MinReactivity, MaxReactivity)
	}
	// Tested skills without a weight still get the neutral multiplier.
	for _, skill := range testedSkills {
		if _, ok := result.Multipliers[skill]; !ok {
			result.Multipliers[skill] = 1.0
		}
	}
	return result
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sortedKeys keeps warning order deterministic across runs.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
