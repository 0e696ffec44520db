package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
)

func scored(total int, avg float64) *Build {
	return &Build{TotalPrice: total, AvgPerformanceScore: avg}
}

func TestCompareThreeBuilds(t *testing.T) {
	c := Compare([]*Build{scored(40000, 60), scored(70000, 75), scored(100000, 78)})

	require.NotNil(t, c.Cheapest)
	require.NotNil(t, c.BestPerformance)
	require.NotNil(t, c.BestValue)
	assert.Equal(t, 0, *c.Cheapest)
	assert.Equal(t, 2, *c.BestPerformance)
	assert.Equal(t, 0, *c.BestValue)
	assert.InDelta(t, 15.0, c.ValueScores[0], 1e-9)
	assert.InDelta(t, 10.714, c.ValueScores[1], 1e-3)
	assert.InDelta(t, 7.8, c.ValueScores[2], 1e-9)
	assert.Equal(t, 40000, c.CheapestBuild().TotalPrice)
	assert.Equal(t, 100000, c.BestPerformanceBuild().TotalPrice)
}

func TestCompareEmpty(t *testing.T) {
	for _, in := range [][]*Build{nil, {}, {nil}} {
		c := Compare(in)
		assert.Nil(t, c.Cheapest)
		assert.Nil(t, c.BestPerformance)
		assert.Nil(t, c.BestValue)
		assert.Empty(t, c.Builds)
		assert.Nil(t, c.BestValueBuild())
	}
}

func TestCompareSkipsNilBuilds(t *testing.T) {
	c := Compare([]*Build{nil, scored(70000, 75), nil, scored(40000, 60)})
	require.Len(t, c.Builds, 2)
	require.Len(t, c.ValueScores, 2)
	assert.Equal(t, 1, *c.Cheapest)
	assert.Equal(t, 0, *c.BestPerformance)
	assert.Equal(t, 40000, c.BestValueBuild().TotalPrice)
}

func TestCompareTiesGoToFirst(t *testing.T) {
	c := Compare([]*Build{scored(50000, 70), scored(50000, 70)})
	assert.Equal(t, 0, *c.Cheapest)
	assert.Equal(t, 0, *c.BestPerformance)
	assert.Equal(t, 0, *c.BestValue)
}

func TestBuildValueZeroPrice(t *testing.T) {
	assert.Zero(t, BuildValue(scored(0, 80)))
	assert.Zero(t, BuildValue(nil))
}

func TestAnalyzeMismatchedTiers(t *testing.T) {
	build := func(cpu, gpu string) *Build {
		return &Build{Components: map[catalog.Category]catalog.Component{
			catalog.CategoryCPU: part(catalog.CategoryCPU, cpu, 10000, 50, nil),
			catalog.CategoryGPU: part(catalog.CategoryGPU, gpu, 10000, 50, nil),
		}}
	}

	a := Analyze(build("Intel Core i3-12100F", "MSI RTX 4090 Suprim"))
	assert.Contains(t, a.Warnings, "CPU may bottleneck GPU performance")
	assert.Contains(t, a.Recommendations, "Consider upgrading CPU")

	a = Analyze(build("AMD Ryzen 9 7950X", "GTX 1650 Super"))
	assert.Equal(t, []string{"GPU may limit gaming performance"}, a.Warnings)
	assert.Equal(t, []string{"Consider upgrading GPU"}, a.Recommendations)

	a = Analyze(build("AMD Ryzen 5 7600", "Zotac RTX 4070 Twin Edge"))
	assert.Empty(t, a.Warnings)
	assert.NotNil(t, a.Warnings)
}

func TestAnalyzeNeedsBothParts(t *testing.T) {
	b := &Build{Components: map[catalog.Category]catalog.Component{
		catalog.CategoryCPU: part(catalog.CategoryCPU, "Intel Pentium Gold G7400", 8000, 30, nil),
	}}
	a := Analyze(b)
	assert.Empty(t, a.Warnings)
	assert.Empty(t, a.Recommendations)
}
