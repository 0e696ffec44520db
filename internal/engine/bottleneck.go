package engine

import (
	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

type Analysis struct {
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// Analyze flags CPU/GPU tier mismatches. Builds without both parts get an empty
// analysis.
func Analyze(b *Build) Analysis {
	a := Analysis{Warnings: []string{}, Recommendations: []string{}}
	cpu, okCPU := b.Component(catalog.CategoryCPU)
	gpu, okGPU := b.Component(catalog.CategoryGPU)
	if !okCPU || !okGPU {
		return a
	}

	cpuTier := rules.Classify(catalog.CategoryCPU, cpu.Name)
	gpuTier := rules.Classify(catalog.CategoryGPU, gpu.Name)

	switch {
	case cpuTier == rules.TierLow && gpuTier == rules.TierHigh:
		a.Warnings = append(a.Warnings, "CPU may bottleneck GPU performance")
		a.Recommendations = append(a.Recommendations, "Consider upgrading CPU")
	case gpuTier == rules.TierLow && cpuTier == rules.TierHigh:
		a.Warnings = append(a.Warnings, "GPU may limit gaming performance")
		a.Recommendations = append(a.Recommendations, "Consider upgrading GPU")
	}
	return a
}
