package engine

// Comparison ranks a set of builds. Builds is the input with nil entries dropped;
// index fields and ValueScores refer to Builds, not to the caller's slice. Index
// fields are nil when there is nothing to compare.
type Comparison struct {
	Builds          []*Build  `json:"builds"`
	ValueScores     []float64 `json:"value_scores"`
	Cheapest        *int      `json:"cheapest"`
	BestPerformance *int      `json:"best_performance"`
	BestValue       *int      `json:"best_value"`
}

// BuildValue is performance per 10,000 units of currency.
func BuildValue(b *Build) float64 {
	if b == nil || b.TotalPrice <= 0 {
		return 0
	}
	return b.AvgPerformanceScore / float64(b.TotalPrice) * 10000
}

// Compare never fails; ties go to the earliest build.
func Compare(builds []*Build) Comparison {
	c := Comparison{
		Builds:      make([]*Build, 0, len(builds)),
		ValueScores: make([]float64, 0, len(builds)),
	}
	for _, b := range builds {
		if b != nil {
			c.Builds = append(c.Builds, b)
		}
	}
	if len(c.Builds) == 0 {
		return c
	}

	cheapest, best, value := 0, 0, 0
	for i, b := range c.Builds {
		c.ValueScores = append(c.ValueScores, BuildValue(b))
		if b.TotalPrice < c.Builds[cheapest].TotalPrice {
			cheapest = i
		}
		if b.AvgPerformanceScore > c.Builds[best].AvgPerformanceScore {
			best = i
		}
		if c.ValueScores[i] > c.ValueScores[value] {
			value = i
		}
	}
	c.Cheapest, c.BestPerformance, c.BestValue = &cheapest, &best, &value
	return c
}

func (c Comparison) at(idx *int) *Build {
	if idx == nil || *idx < 0 || *idx >= len(c.Builds) {
		return nil
	}
	return c.Builds[*idx]
}

func (c Comparison) CheapestBuild() *Build        { return c.at(c.Cheapest) }
func (c Comparison) BestPerformanceBuild() *Build { return c.at(c.BestPerformance) }
func (c Comparison) BestValueBuild() *Build       { return c.at(c.BestValue) }
