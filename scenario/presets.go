package scenario

// PresetBase is the reference four-grade career: five years per grade,
// 1000 at CD14 with 2% growth per level.
const PresetBase = "carrera-base"

// PresetManual shows a hand-entered allocation table.
const PresetManual = "asignacion-manual"

// Presets returns the built-in scenarios in a stable order.
func Presets() []Scenario {
	return []Scenario{
		{
			ID:         PresetBase,
			Name:       "Carrera horizontal: 4 grados de 5 años",
			Grades:     4,
			GradeYears: []int{5, 5, 5, 5},
			Allocation: AllocationJSON{
				Mode:        "proportional",
				GrowthRate:  0.02,
				BaseAmounts: []float64{1000, 1000, 1000, 1000},
			},
		},
		{
			ID:         PresetManual,
			Name:       "Asignación manual: 3 grados",
			Grades:     3,
			GradeYears: []int{4, 4, 4},
			Allocation: AllocationJSON{
				Mode: "manual",
				Amounts: []AmountJSON{
					{Grade: 1, Level: 14, Amount: 900},
					{Grade: 1, Level: 20, Amount: 1100},
					{Grade: 2, Level: 14, Amount: 1200},
					{Grade: 2, Level: 20, Amount: 1450},
					{Grade: 3, Level: 14, Amount: 1500},
					{Grade: 3, Level: 20, Amount: 1800},
				},
			},
		},
	}
}

// Preset looks up a built-in scenario by id.
func Preset(id string) (Scenario, bool) {
	for _, p := range Presets() {
		if p.ID == id {
			return p, true
		}
	}
	return Scenario{}, false
}
