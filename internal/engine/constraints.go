package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

// Constraint keys as they appear in diagnostics.
const (
	ConstraintSocket     = "socket"
	ConstraintMinWattage = "min_wattage"
	ConstraintRAMType    = "ram_type"
	ConstraintChipsetIn  = "chipset_in"
)

// ConstraintSet accumulates compatibility requirements during one assembly run. It is
// a value: every With* method returns an extended copy and leaves the receiver as it
// was. A key, once set, is never removed or replaced; min_wattage can only tighten.
type ConstraintSet struct {
	socket      string
	chipsets    []string
	hasChipsets bool
	ramType     string
	minWattage  int
}

// WithSocket records the CPU socket and the chipset set it implies. An unknown socket
// yields an empty chipset set, which no motherboard satisfies.
func (c ConstraintSet) WithSocket(socket string) ConstraintSet {
	socket = strings.TrimSpace(socket)
	if c.socket != "" || socket == "" {
		return c
	}
	c.socket = socket
	c.chipsets = rules.CompatibleChipsets(socket)
	if c.chipsets == nil {
		c.chipsets = []string{}
	}
	c.hasChipsets = true
	return c
}

func (c ConstraintSet) WithRAMType(ramType string) ConstraintSet {
	if c.ramType != "" || ramType == "" {
		return c
	}
	c.ramType = ramType
	return c
}

func (c ConstraintSet) WithMinWattage(watts int) ConstraintSet {
	if watts > c.minWattage {
		c.minWattage = watts
	}
	return c
}

func (c ConstraintSet) Socket() string  { return c.socket }
func (c ConstraintSet) RAMType() string { return c.ramType }
func (c ConstraintSet) MinWattage() int { return c.minWattage }

// Chipsets returns a copy of the chipset_in set and whether it has been set.
func (c ConstraintSet) Chipsets() ([]string, bool) {
	out := make([]string, len(c.chipsets))
	copy(out, c.chipsets)
	return out, c.hasChipsets
}

func (c ConstraintSet) Empty() bool {
	return c.socket == "" && !c.hasChipsets && c.ramType == "" && c.minWattage == 0
}

// FiltersFor returns the catalog filters that apply to category.
func (c ConstraintSet) FiltersFor(category catalog.Category) []catalog.SpecFilter {
	switch category {
	case catalog.CategoryMotherboard:
		if chipsets, ok := c.Chipsets(); ok {
			return []catalog.SpecFilter{catalog.In(catalog.SpecChipset, chipsets...)}
		}
	case catalog.CategoryPSU:
		if c.minWattage > 0 {
			return []catalog.SpecFilter{catalog.AtLeast(catalog.SpecWattage, c.minWattage)}
		}
	case catalog.CategoryRAM:
		if c.ramType != "" {
			return []catalog.SpecFilter{catalog.Equals(catalog.SpecType, c.ramType)}
		}
	}
	return nil
}

// Map renders the set keyed by constraint name, omitting unset keys.
func (c ConstraintSet) Map() map[string]any {
	m := make(map[string]any)
	if c.socket != "" {
		m[ConstraintSocket] = c.socket
	}
	if c.hasChipsets {
		chipsets, _ := c.Chipsets()
		m[ConstraintChipsetIn] = chipsets
	}
	if c.ramType != "" {
		m[ConstraintRAMType] = c.ramType
	}
	if c.minWattage > 0 {
		m[ConstraintMinWattage] = c.minWattage
	}
	return m
}

func (c ConstraintSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

func (c ConstraintSet) String() string {
	m := c.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}
