package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

type Options struct {
	// CandidateLimit caps the candidates ranked per category.
	CandidateLimit int
	// HighTierCPUBoost scales the CPU share when the chosen GPU is high tier.
	HighTierCPUBoost float64
	// RefinePSUWattage re-estimates min_wattage with the chosen CPU's tier.
	RefinePSUWattage bool
}

func DefaultOptions() Options {
	return Options{
		CandidateLimit:   catalog.DefaultQueryLimit,
		HighTierCPUBoost: 1.2,
	}
}

// Assembler turns build requirements into a compatible build. It holds no per-run
// state and is safe for concurrent use.
type Assembler struct {
	selector *Selector
	opts     Options
	logger   *slog.Logger
}

func NewAssembler(c catalog.Catalog, opts Options, logger *slog.Logger) *Assembler {
	if opts.HighTierCPUBoost <= 0 {
		opts.HighTierCPUBoost = DefaultOptions().HighTierCPUBoost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		selector: NewSelector(c, opts.CandidateLimit),
		opts:     opts,
		logger:   logger,
	}
}

// assembly is the state of one run. Stages take it by value and return the
// extended state; nothing outside the run sees it.
type assembly struct {
	req         BuildRequirements
	alloc       rules.Allocation
	prefs       Preferences
	components  map[catalog.Category]catalog.Component
	remaining   int
	constraints ConstraintSet
}

func (st assembly) with(c catalog.Component) assembly {
	components := make(map[catalog.Category]catalog.Component, len(st.components)+1)
	for k, v := range st.components {
		components[k] = v
	}
	components[c.Category] = c
	st.components = components
	st.remaining -= c.Price
	return st
}

// ceiling is the category's share of the budget, limited by what is left.
func (st assembly) ceiling(c catalog.Category) int {
	return min(st.alloc.Budget(c, st.req.Budget), st.remaining)
}

func (st assembly) tier(c catalog.Category) rules.Tier {
	comp, ok := st.components[c]
	if !ok {
		return rules.TierMid
	}
	return rules.Classify(c, comp.Name)
}

type stage func(ctx context.Context, st assembly) (assembly, error)

// Recommend runs the pipeline for req.Purpose. A miss in a required category returns
// *NoSuitableComponentError and no partial build.
func (a *Assembler) Recommend(ctx context.Context, req BuildRequirements) (*Build, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	alloc, err := rules.AllocationFor(req.Purpose)
	if errors.Is(err, rules.ErrNoAllocation) {
		return nil, &UnimplementedPurposeError{Purpose: req.Purpose}
	}
	if err != nil {
		return nil, err
	}

	var stages []stage
	switch {
	case req.Purpose.IsGaming():
		stages = a.gamingStages()
	case req.Purpose == rules.PurposeOffice, req.Purpose == rules.PurposeProductivity,
		req.Purpose == rules.PurposeContentCreation:
		stages = a.workstationStages(req.Purpose == rules.PurposeContentCreation)
	default:
		return nil, &UnimplementedPurposeError{Purpose: req.Purpose}
	}

	st := assembly{
		req:        req,
		alloc:      alloc,
		prefs:      req.brandPreferences(),
		components: map[catalog.Category]catalog.Component{},
		remaining:  req.Budget,
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if st, err = s(ctx, st); err != nil {
			return nil, err
		}
	}

	b := newBuild(req, st.components)
	a.logger.Debug("build assembled",
		"purpose", req.Purpose,
		"budget", req.Budget,
		"total_price", b.TotalPrice,
		"components", len(b.Components),
	)
	return b, nil
}

// pick selects category under ceiling. Optional misses leave the state unchanged.
func (a *Assembler) pick(ctx context.Context, st assembly, category catalog.Category, ceiling int, required bool) (assembly, error) {
	comp, err := a.selector.Select(ctx, category, ceiling, st.constraints, st.prefs)
	if errors.Is(err, ErrNotFound) {
		if required {
			return st, &NoSuitableComponentError{Category: category, Ceiling: ceiling, Constraints: st.constraints}
		}
		a.logger.Debug("optional component skipped", "category", category, "ceiling", ceiling)
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("select %s: %w", category, err)
	}
	return st.with(*comp), nil
}

func (a *Assembler) pickShare(category catalog.Category, required bool) stage {
	return func(ctx context.Context, st assembly) (assembly, error) {
		return a.pick(ctx, st, category, st.ceiling(category), required)
	}
}

func (a *Assembler) gamingStages() []stage {
	return []stage{
		a.gamingGPU,
		a.gamingCPU,
		a.pickShare(catalog.CategoryMotherboard, true),
		a.memory,
		a.pickShare(catalog.CategoryStorage, false),
		a.pickShare(catalog.CategoryPSU, false),
		a.chassis,
		a.cooling,
	}
}

func (a *Assembler) workstationStages(gpuRequired bool) []stage {
	return []stage{
		a.processor(1),
		a.pickShare(catalog.CategoryMotherboard, true),
		a.memory,
		a.pickShare(catalog.CategoryStorage, false),
		a.pickShare(catalog.CategoryGPU, gpuRequired),
		a.workstationWattage,
		a.pickShare(catalog.CategoryPSU, false),
		a.chassis,
	}
}

func (a *Assembler) gamingGPU(ctx context.Context, st assembly) (assembly, error) {
	st, err := a.pick(ctx, st, catalog.CategoryGPU, st.ceiling(catalog.CategoryGPU), true)
	if err != nil {
		return st, err
	}
	gpu := st.components[catalog.CategoryGPU]
	// The CPU is not known yet; size for a mid-tier one.
	st.constraints = st.constraints.WithMinWattage(rules.EstimatePSUWattage(gpu.Name, rules.TierMid))
	return st, nil
}

func (a *Assembler) gamingCPU(ctx context.Context, st assembly) (assembly, error) {
	boost := 1.0
	if st.tier(catalog.CategoryGPU) == rules.TierHigh {
		boost = a.opts.HighTierCPUBoost
	}
	st, err := a.processor(boost)(ctx, st)
	if err != nil {
		return st, err
	}
	if a.opts.RefinePSUWattage {
		gpu := st.components[catalog.CategoryGPU]
		st.constraints = st.constraints.WithMinWattage(
			rules.EstimatePSUWattage(gpu.Name, st.tier(catalog.CategoryCPU)))
	}
	return st, nil
}

// processor picks the CPU, scaling its share by boost, and derives the socket
// constraints from it.
func (a *Assembler) processor(boost float64) stage {
	return func(ctx context.Context, st assembly) (assembly, error) {
		ceiling := st.alloc.Budget(catalog.CategoryCPU, st.req.Budget)
		if boost != 1 {
			ceiling = int(float64(ceiling) * boost)
		}
		ceiling = min(ceiling, st.remaining)

		st, err := a.pick(ctx, st, catalog.CategoryCPU, ceiling, true)
		if err != nil {
			return st, err
		}
		cpu := st.components[catalog.CategoryCPU]
		if socket := cpu.SpecString(catalog.SpecSocket); socket != "" {
			st.constraints = st.constraints.WithSocket(socket)
		}
		return st, nil
	}
}

func (a *Assembler) memory(ctx context.Context, st assembly) (assembly, error) {
	st.constraints = st.constraints.WithRAMType(rules.MemoryFor(st.constraints.Socket()))
	return a.pick(ctx, st, catalog.CategoryRAM, st.ceiling(catalog.CategoryRAM), true)
}

func (a *Assembler) workstationWattage(_ context.Context, st assembly) (assembly, error) {
	gpuName := ""
	if gpu, ok := st.components[catalog.CategoryGPU]; ok {
		gpuName = gpu.Name
	}
	st.constraints = st.constraints.WithMinWattage(
		rules.EstimatePSUWattage(gpuName, st.tier(catalog.CategoryCPU)))
	return st, nil
}

// chassis gets whatever budget is left.
func (a *Assembler) chassis(ctx context.Context, st assembly) (assembly, error) {
	return a.pick(ctx, st, catalog.CategoryCase, st.remaining, false)
}

func (a *Assembler) cooling(ctx context.Context, st assembly) (assembly, error) {
	if st.alloc.Fraction(catalog.CategoryCooling) <= 0 {
		return st, nil
	}
	return a.pick(ctx, st, catalog.CategoryCooling, st.ceiling(catalog.CategoryCooling), false)
}
