package advisory

// DefaultConditions are the reference readings per district
func DefaultConditions() map[string]Conditions {
	return map[string]Conditions{
		"Kabale":        {RainfallMM: 15, NDVI: 0.7, PestRisk: PestHigh, TemperatureC: 18},
		"Masaka":        {RainfallMM: 30, NDVI: 0.9, PestRisk: PestLow, TemperatureC: 25},
		"Gulu":          {RainfallMM: 18, NDVI: 0.6, PestRisk: PestMedium, TemperatureC: 28},
		DefaultDistrict: {RainfallMM: 20, NDVI: 0.8, PestRisk: PestLow, TemperatureC: 22},
	}
}

// DefaultRules are the advisory rules per crop
func DefaultRules() map[string][]Rule {
	return map[string][]Rule{
		"maize": {
			{func(c Conditions) bool { return c.RainfallMM < 20 }, "🌧 Delay planting - rainfall too low (needs 20mm+)"},
			{func(c Conditions) bool { return c.PestRisk == PestHigh }, "🐛 High pest risk - use resistant varieties"},
			{func(c Conditions) bool { return c.NDVI < 0.7 }, "🌱 Low vegetation index - add fertilizer"},
			{func(c Conditions) bool { return c.TemperatureC > 25 }, "🔥 High temperatures may affect growth"},
		},
		"beans": {
			{func(c Conditions) bool { return c.RainfallMM > 25 }, "✅ Good for planting now"},
			{func(c Conditions) bool { return c.NDVI < 0.8 }, "⚗ Consider soil enrichment"},
			{func(c Conditions) bool { return c.PestRisk == PestHigh || c.PestRisk == PestMedium }, "⚠ Apply neem extract for pest control"},
			{func(c Conditions) bool { return c.TemperatureC < 20 }, "❄ Low temperatures - consider greenhouse"},
		},
		"coffee": {
			{func(c Conditions) bool { return c.RainfallMM < 30 }, "💧 Irrigation recommended"},
			{func(c Conditions) bool { return c.TemperatureC > 28 }, "🌡 Provide shade cover"},
		},
	}
}
