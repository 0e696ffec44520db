package rules

import (
	"strings"
)

var socketChipsets = map[string][]string{
	// AMD
	"AM4": {"B450", "B550", "X470", "X570", "A520"},
	"AM5": {"B650", "X670", "B650E", "X670E"},
	// Intel
	"LGA1700": {"B660", "H670", "Z690", "B760", "H770", "Z790"},
	"LGA1200": {"B460", "H470", "Z490", "B560", "H570", "Z590"},
}

const (
	MemoryDDR4 = "DDR4"
	MemoryDDR5 = "DDR5"
)

func normalizeSocket(socket string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(socket), " ", ""))
}

// CompatibleChipsets returns the chipsets that accept socket, or nil for an unknown socket.
func CompatibleChipsets(socket string) []string {
	chipsets, ok := socketChipsets[normalizeSocket(socket)]
	if !ok {
		return nil
	}
	out := make([]string, len(chipsets))
	copy(out, chipsets)
	return out
}

// KnownSocket reports whether socket has a chipset table.
func KnownSocket(socket string) bool {
	_, ok := socketChipsets[normalizeSocket(socket)]
	return ok
}

// ChipsetCompatible reports whether chipset belongs to socket's compatible set.
func ChipsetCompatible(socket, chipset string) bool {
	for _, c := range socketChipsets[normalizeSocket(socket)] {
		if strings.EqualFold(c, strings.TrimSpace(chipset)) {
			return true
		}
	}
	return false
}

// MemoryFor returns the preferred memory generation for socket. LGA1700 boards exist
// in both generations; DDR5 is preferred.
func MemoryFor(socket string) string {
	switch normalizeSocket(socket) {
	case "AM5", "LGA1700":
		return MemoryDDR5
	}
	return MemoryDDR4
}

const (
	baseSystemWatts = 300
	defaultGPUWatts = 200
	// 20% headroom, applied as ×12/10 so the floor is exact.
	psuHeadroomNum     = 12
	psuHeadroomDen     = 10
	minimumPSUWatts    = 450
	integratedGPUToken = "integrated"
)

type gpuFamily struct {
	token string
	watts int
}

// gpuFamilies maps normalized family tokens to the recommended total PSU wattage for a
// system built around that card. More specific tokens come first.
var gpuFamilies = []gpuFamily{
	{"rtx 4090", 850},
	{"rtx 4080", 750},
	{"rtx 4070 ti", 700},
	{"rtx 4070", 650},
	{"rtx 4060 ti", 550},
	{"rtx 4060", 500},
	{"rtx 3070", 650},
	{"rtx 3060", 550},
	{"gtx 1660", 450},
	{integratedGPUToken, 400},
}

// gpuMarginalWatts is the GPU's draw on top of the base system.
func gpuMarginalWatts(gpuName string) int {
	normalized := normalizeName(gpuName)
	for _, f := range gpuFamilies {
		if strings.Contains(normalized, f.token) {
			return f.watts - baseSystemWatts
		}
	}
	return defaultGPUWatts
}

func cpuWatts(tier Tier) int {
	switch tier {
	case TierHigh:
		return 150
	case TierMid:
		return 100
	}
	return 65
}

// EstimatePSUWattage is a coarse sizing heuristic, not a certified power calculation:
// (base + GPU marginal + CPU draw) × 1.2, never below 450 W. An empty gpuName sizes
// for integrated graphics.
func EstimatePSUWattage(gpuName string, cpuTier Tier) int {
	if strings.TrimSpace(gpuName) == "" {
		gpuName = integratedGPUToken
	}
	total := (baseSystemWatts + gpuMarginalWatts(gpuName) + cpuWatts(cpuTier)) * psuHeadroomNum / psuHeadroomDen
	if total < minimumPSUWatts {
		return minimumPSUWatts
	}
	return total
}
