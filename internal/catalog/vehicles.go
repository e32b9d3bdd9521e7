package catalog

// vehicleModels maps make names to the models offered by the vehicle form.
var vehicleModels = map[string][]string{
	"Toyota":     {"Camry", "Corolla", "RAV4", "Highlander", "Tacoma", "Tundra", "4Runner", "Prius", "Sienna", "Avalon"},
	"Honda":      {"Civic", "Accord", "CR-V", "Pilot", "Odyssey", "HR-V", "Ridgeline", "Fit", "Insight"},
	"Ford":       {"F-150", "Mustang", "Explorer", "Escape", "Ranger", "Bronco", "Edge", "Expedition", "Focus", "Fusion"},
	"Chevrolet":  {"Silverado", "Equinox", "Malibu", "Traverse", "Tahoe", "Suburban", "Colorado", "Camaro", "Cruze", "Impala"},
	"Nissan":     {"Altima", "Sentra", "Rogue", "Pathfinder", "Frontier", "Maxima", "Murano", "Versa", "Leaf"},
	"BMW":        {"3 Series", "5 Series", "7 Series", "X1", "X3", "X5", "M3"},
	"Mercedes":   {"C-Class", "E-Class", "S-Class", "GLC", "GLE", "A-Class", "CLA"},
	"Audi":       {"A3", "A4", "A6", "Q3", "Q5", "Q7"},
	"Volkswagen": {"Golf", "Jetta", "Passat", "Tiguan", "Atlas", "Beetle"},
	"Hyundai":    {"Elantra", "Sonata", "Tucson", "Santa Fe", "Kona", "Accent"},
	"Kia":        {"Forte", "Optima", "Sportage", "Sorento", "Soul", "Telluride"},
	"Subaru":     {"Outback", "Forester", "Crosstrek", "Impreza", "WRX", "Legacy"},
	"Mazda":      {"Mazda3", "Mazda6", "CX-5", "CX-9", "MX-5 Miata"},
	"Jeep":       {"Wrangler", "Grand Cherokee", "Cherokee", "Compass", "Renegade"},
	"Dodge":      {"Charger", "Challenger", "Durango", "Grand Caravan"},
	"Ram":        {"1500", "2500", "3500"},
	"GMC":        {"Sierra", "Terrain", "Acadia", "Yukon"},
	"Lexus":      {"ES", "IS", "RX", "NX", "GX"},
	"Tesla":      {"Model 3", "Model Y", "Model S", "Model X"},
}
