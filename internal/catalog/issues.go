package catalog

import "github.com/tjfontaine/autodiag/internal/domain"

// commonIssues is the canned issue table searched by the local matcher.
var commonIssues = []domain.Issue{
	{
		ID:           "engine-clicking",
		Category:     "Engine",
		Description:  "Clicking noise coming from the engine",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Low oil level", "Worn valve lifters", "Carbon buildup", "Timing chain issues"},
		Keywords:     []string{"clicking", "ticking", "tapping", "engine", "hood"},
	},
	{
		ID:           "engine-knocking",
		Category:     "Engine",
		Description:  "Knocking or pinging sound when accelerating",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Bad fuel quality", "Carbon buildup", "Wrong octane fuel", "Engine timing issues"},
		Keywords:     []string{"knocking", "pinging", "metallic", "acceleration", "engine"},
	},
	{
		ID:           "engine-rough-idle",
		Category:     "Engine",
		Description:  "Engine runs rough or shakes when idling",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Dirty air filter", "Bad spark plugs", "Vacuum leak", "Fuel injector problems"},
		Keywords:     []string{"rough", "shaking", "vibration", "idle", "unstable"},
	},
	{
		ID:           "engine-wont-start",
		Category:     "Engine",
		Description:  "Engine cranks but won't start",
		Severity:     domain.SeverityCritical,
		CommonCauses: []string{"Dead battery", "Bad starter", "Fuel pump failure", "Ignition system issues"},
		Keywords:     []string{"wont start", "cranking", "no start", "dead", "battery"},
	},
	{
		ID:           "engine-overheating",
		Category:     "Engine",
		Description:  "Engine temperature running hot or overheating",
		Severity:     domain.SeverityCritical,
		CommonCauses: []string{"Coolant leak", "Bad thermostat", "Radiator issues", "Water pump failure"},
		Keywords:     []string{"hot", "overheating", "temperature", "steam", "coolant"},
	},
	{
		ID:           "brakes-squealing",
		Category:     "Brakes",
		Description:  "High-pitched squealing when braking",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Worn brake pads", "Glazed rotors", "Brake dust buildup", "Worn brake shoes"},
		Keywords:     []string{"squealing", "screeching", "high pitched", "brakes", "stopping"},
	},
	{
		ID:           "brakes-grinding",
		Category:     "Brakes",
		Description:  "Grinding noise when applying brakes",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Severely worn brake pads", "Damaged rotors", "Brake hardware issues", "Debris in brakes"},
		Keywords:     []string{"grinding", "metal on metal", "scraping", "brakes", "loud"},
	},
	{
		ID:           "brakes-soft-pedal",
		Category:     "Brakes",
		Description:  "Brake pedal feels soft or spongy",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Air in brake lines", "Brake fluid leak", "Worn brake pads", "Master cylinder issues"},
		Keywords:     []string{"soft", "spongy", "pedal", "mushy", "brake"},
	},
	{
		ID:           "brakes-pulling",
		Category:     "Brakes",
		Description:  "Car pulls to one side when braking",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Uneven brake pad wear", "Stuck caliper", "Contaminated brake fluid", "Alignment issues"},
		Keywords:     []string{"pulling", "veering", "one side", "steering", "braking"},
	},
	{
		ID:           "transmission-slipping",
		Category:     "Transmission",
		Description:  "Transmission slips or doesn't shift properly",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Low transmission fluid", "Worn clutch", "Internal damage", "Solenoid problems"},
		Keywords:     []string{"slipping", "shifting", "transmission", "gears", "delay"},
	},
	{
		ID:           "transmission-grinding",
		Category:     "Transmission",
		Description:  "Grinding noise when shifting gears",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Worn synchronizers", "Low gear oil", "Clutch problems", "Internal wear"},
		Keywords:     []string{"grinding", "shifting", "gears", "manual", "clutch"},
	},
	{
		ID:           "transmission-whining",
		Category:     "Transmission",
		Description:  "Whining or whirring noise from transmission",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Low transmission fluid", "Worn bearings", "Torque converter issues", "Pump problems"},
		Keywords:     []string{"whining", "whirring", "transmission", "automatic", "noise"},
	},
	{
		ID:           "electrical-clicking-start",
		Category:     "Electrical",
		Description:  "Rapid clicking when trying to start the car",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Weak battery", "Corroded terminals", "Bad starter solenoid", "Poor connections"},
		Keywords:     []string{"clicking", "rapid", "start", "starter", "electrical"},
	},
	{
		ID:           "electrical-dim-lights",
		Category:     "Electrical",
		Description:  "Headlights or interior lights are dim",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Weak battery", "Bad alternator", "Corroded connections", "Voltage regulator issues"},
		Keywords:     []string{"dim", "lights", "headlights", "dark", "electrical"},
	},
	{
		ID:           "electrical-dead-battery",
		Category:     "Electrical",
		Description:  "Battery keeps dying or won't hold charge",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Old battery", "Parasitic drain", "Bad alternator", "Corroded terminals"},
		Keywords:     []string{"dead", "battery", "charge", "dying", "electrical"},
	},
	{
		ID:           "suspension-clunking",
		Category:     "Suspension",
		Description:  "Clunking noise over bumps or when turning",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Worn struts", "Bad sway bar links", "Loose ball joints", "Damaged bushings"},
		Keywords:     []string{"clunking", "bumps", "turning", "suspension", "noise"},
	},
	{
		ID:           "steering-hard",
		Category:     "Steering",
		Description:  "Steering wheel is hard to turn",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Low power steering fluid", "Bad power steering pump", "Belt issues", "Rack and pinion problems"},
		Keywords:     []string{"hard", "steering", "difficult", "turn", "effort"},
	},
	{
		ID:           "steering-vibration",
		Category:     "Steering",
		Description:  "Steering wheel vibrates while driving",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Unbalanced wheels", "Warped brake rotors", "Alignment issues", "Tire problems"},
		Keywords:     []string{"vibration", "shaking", "steering", "wheel", "driving"},
	},
	{
		ID:           "exhaust-loud",
		Category:     "Exhaust",
		Description:  "Car is much louder than usual",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Exhaust leak", "Damaged muffler", "Broken exhaust pipe", "Catalytic converter issues"},
		Keywords:     []string{"loud", "noise", "exhaust", "muffler", "rumbling"},
	},
	{
		ID:           "exhaust-smoke-white",
		Category:     "Exhaust",
		Description:  "White smoke coming from exhaust",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Coolant leak into engine", "Blown head gasket", "Cracked cylinder head", "Cold weather condensation"},
		Keywords:     []string{"white", "smoke", "exhaust", "steam", "tailpipe"},
	},
	{
		ID:           "exhaust-smoke-blue",
		Category:     "Exhaust",
		Description:  "Blue smoke coming from exhaust",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Burning oil", "Worn piston rings", "Valve seal problems", "Turbocharger issues"},
		Keywords:     []string{"blue", "smoke", "exhaust", "oil", "burning"},
	},
	{
		ID:           "ac-not-cold",
		Category:     "Climate Control",
		Description:  "Air conditioning not blowing cold air",
		Severity:     domain.SeverityLow,
		CommonCauses: []string{"Low refrigerant", "Bad compressor", "Clogged filter", "Electrical issues"},
		Keywords:     []string{"ac", "air conditioning", "not cold", "warm", "hot"},
	},
	{
		ID:           "heater-not-warm",
		Category:     "Climate Control",
		Description:  "Heater not producing warm air",
		Severity:     domain.SeverityLow,
		CommonCauses: []string{"Low coolant", "Bad heater core", "Thermostat stuck", "Blend door issues"},
		Keywords:     []string{"heater", "heat", "cold", "not warm", "blowing"},
	},
	{
		ID:           "fuel-poor-mileage",
		Category:     "Fuel System",
		Description:  "Getting much worse gas mileage than usual",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Dirty air filter", "Bad oxygen sensor", "Fuel injector problems", "Tire pressure low"},
		Keywords:     []string{"mileage", "mpg", "fuel", "gas", "consumption"},
	},
	{
		ID:           "fuel-smell",
		Category:     "Fuel System",
		Description:  "Smell of gasoline inside or outside the car",
		Severity:     domain.SeverityHigh,
		CommonCauses: []string{"Fuel leak", "Bad fuel pump", "Evaporative system leak", "Fuel line damage"},
		Keywords:     []string{"smell", "gasoline", "fuel", "odor", "fumes"},
	},
	{
		ID:           "tire-noise",
		Category:     "Tires",
		Description:  "Unusual noise or humming from tires",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Uneven tire wear", "Low tire pressure", "Alignment issues", "Bad wheel bearing"},
		Keywords:     []string{"tire", "humming", "road noise", "wearing", "pressure"},
	},
	{
		ID:           "tire-vibration",
		Category:     "Tires",
		Description:  "Car vibrates at certain speeds",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Unbalanced tires", "Bent rim", "Tire defect", "Suspension problems"},
		Keywords:     []string{"vibration", "speed", "shaking", "tires", "wheels"},
	},
}
