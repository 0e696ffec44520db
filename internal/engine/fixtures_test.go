package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func part(category catalog.Category, name string, price, perf int, specs map[string]any) catalog.Component {
	return catalog.Component{
		ID:               name,
		Name:             name,
		Category:         category,
		Price:            price,
		Stock:            catalog.StockInStock,
		Specs:            specs,
		PerformanceScore: perf,
	}
}

func socket(s string) map[string]any  { return map[string]any{catalog.SpecSocket: s} }
func chipset(s string) map[string]any { return map[string]any{catalog.SpecChipset: s} }
func ramType(s string) map[string]any { return map[string]any{catalog.SpecType: s} }
func watts(w int) map[string]any      { return map[string]any{catalog.SpecWattage: w} }

// scenarioParts is the seven-part budget gaming catalog. The GPU is an RX 6700 XT so
// the provisional PSU estimate stays at 720 W.
func scenarioParts(psuWatts int) []catalog.Component {
	return []catalog.Component{
		part(catalog.CategoryGPU, "Sapphire Pulse RX 6700 XT", 15000, 80, nil),
		part(catalog.CategoryCPU, "AMD Ryzen 5 5600X", 10000, 70, socket("AM4")),
		part(catalog.CategoryMotherboard, "MSI B450 Tomahawk", 4000, 60, chipset("B450")),
		part(catalog.CategoryRAM, "Kingston Fury 16GB", 3000, 60, ramType("DDR4")),
		part(catalog.CategoryStorage, "WD Blue SN570 500GB", 3000, 55, nil),
		part(catalog.CategoryPSU, "Corsair CX Series", 3000, 60, watts(psuWatts)),
		part(catalog.CategoryCase, "Antec NX200", 2000, 50, nil),
	}
}

// marketParts is a broader catalog with several candidates per category.
func marketParts() []catalog.Component {
	return []catalog.Component{
		part(catalog.CategoryGPU, "Zotac RTX 4070 Twin Edge", 38000, 82, nil),
		part(catalog.CategoryGPU, "Gigabyte RTX 4060 Eagle", 28000, 70, nil),
		part(catalog.CategoryGPU, "ASUS RTX 4070 Ti TUF", 45000, 88, nil),
		part(catalog.CategoryGPU, "MSI RTX 4090 Suprim", 180000, 99, nil),

		part(catalog.CategoryCPU, "AMD Ryzen 5 7600", 21000, 75, socket("AM5")),
		part(catalog.CategoryCPU, "Intel Core i5-12400F", 15000, 68, socket("LGA1700")),
		part(catalog.CategoryCPU, "AMD Ryzen 7 7800X3D", 26000, 90, socket("AM5")),
		part(catalog.CategoryCPU, "Intel Core i3-12100F", 9000, 50, socket("LGA1700")),
		part(catalog.CategoryCPU, "AMD Ryzen 5 5600", 12000, 65, socket("AM4")),

		part(catalog.CategoryMotherboard, "MSI B650M Mortar", 7500, 70, chipset("B650")),
		part(catalog.CategoryMotherboard, "ASUS Prime B550M", 6000, 65, chipset("B550")),
		part(catalog.CategoryMotherboard, "Gigabyte B760M DS3H", 7000, 66, chipset("B760")),
		part(catalog.CategoryMotherboard, "ASRock X670E Taichi", 30000, 90, chipset("X670E")),

		part(catalog.CategoryRAM, "Corsair Vengeance 32GB DDR5", 11000, 80, ramType("DDR5")),
		part(catalog.CategoryRAM, "Kingston Fury 16GB DDR4", 5000, 60, ramType("DDR4")),
		part(catalog.CategoryRAM, "G.Skill Flare 16GB DDR5", 7000, 70, ramType("DDR5")),

		part(catalog.CategoryStorage, "Samsung 980 1TB NVMe", 7500, 80, nil),
		part(catalog.CategoryStorage, "WD Blue 500GB", 4000, 60, nil),

		part(catalog.CategoryPSU, "Corsair RM1000e", 5800, 85, watts(1000)),
		part(catalog.CategoryPSU, "Corsair CX650", 2900, 60, watts(650)),
		part(catalog.CategoryPSU, "Corsair CV550", 2800, 55, watts(550)),
		part(catalog.CategoryPSU, "Seasonic Focus GX-950", 5500, 80, watts(950)),

		part(catalog.CategoryCase, "NZXT H5 Flow", 6000, 75, nil),
		part(catalog.CategoryCase, "Lian Li Lancool 216", 8500, 80, nil),

		part(catalog.CategoryCooling, "ID-Cooling SE-214", 900, 50, nil),
		part(catalog.CategoryCooling, "Deepcool AK400", 2500, 65, nil),
	}
}

func newTestAssembler(parts []catalog.Component, opts Options) *Assembler {
	return NewAssembler(catalog.NewMemoryCatalog(parts), opts, discardLogger())
}

// stubCatalog fails every query with err and counts calls.
type stubCatalog struct {
	err   error
	calls int
}

func (s *stubCatalog) Query(_ context.Context, _ catalog.Query) ([]catalog.Component, error) {
	s.calls++
	return nil, s.err
}

func (s *stubCatalog) Summary(_ context.Context) (*catalog.Summary, error) {
	return nil, s.err
}
