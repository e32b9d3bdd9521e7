package catalog

import "github.com/tjfontaine/autodiag/internal/domain"

// commonSymptoms is the symptom checklist; every entry starts unselected.
var commonSymptoms = []domain.Symptom{
	{ID: "engine-rough-idle", Category: "Engine", Description: "Engine idles roughly or irregularly"},
	{ID: "engine-stalling", Category: "Engine", Description: "Engine stalls or dies unexpectedly"},
	{ID: "engine-hard-start", Category: "Engine", Description: "Engine is hard to start or won't start"},
	{ID: "engine-misfiring", Category: "Engine", Description: "Engine misfires or runs unevenly"},
	{ID: "engine-knocking", Category: "Engine", Description: "Knocking or pinging noises from engine"},
	{ID: "engine-overheating", Category: "Engine", Description: "Engine overheating or running hot"},
	{ID: "engine-power-loss", Category: "Engine", Description: "Loss of engine power or acceleration"},
	{ID: "engine-oil-leak", Category: "Engine", Description: "Oil leak under the vehicle"},
	{ID: "trans-slipping", Category: "Transmission", Description: "Transmission slipping between gears"},
	{ID: "trans-hard-shift", Category: "Transmission", Description: "Hard or jerky shifting"},
	{ID: "trans-no-shift", Category: "Transmission", Description: "Transmission won't shift or stuck in gear"},
	{ID: "trans-fluid-leak", Category: "Transmission", Description: "Red fluid leak (transmission fluid)"},
	{ID: "trans-grinding", Category: "Transmission", Description: "Grinding noise during shifting"},
	{ID: "brakes-squealing", Category: "Brakes", Description: "Squealing or screeching when braking"},
	{ID: "brakes-grinding", Category: "Brakes", Description: "Grinding noise when braking"},
	{ID: "brakes-soft-pedal", Category: "Brakes", Description: "Brake pedal feels soft or spongy"},
	{ID: "brakes-vibration", Category: "Brakes", Description: "Steering wheel or pedal vibrates when braking"},
	{ID: "brakes-pulling", Category: "Brakes", Description: "Vehicle pulls to one side when braking"},
	{ID: "electrical-dim-lights", Category: "Electrical", Description: "Headlights or interior lights are dim"},
	{ID: "electrical-battery-dead", Category: "Electrical", Description: "Battery keeps dying or won't hold charge"},
	{ID: "electrical-alternator", Category: "Electrical", Description: "Battery warning light is on"},
	{ID: "electrical-starter", Category: "Electrical", Description: "Clicking noise when trying to start"},
	{ID: "electrical-fuses", Category: "Electrical", Description: "Electrical components not working"},
	{ID: "cooling-overheating", Category: "Cooling", Description: "Temperature gauge shows overheating"},
	{ID: "cooling-coolant-leak", Category: "Cooling", Description: "Coolant leak (green, orange, or pink fluid)"},
	{ID: "cooling-steam", Category: "Cooling", Description: "Steam coming from under the hood"},
	{ID: "cooling-no-heat", Category: "Cooling", Description: "Heater not producing warm air"},
	{ID: "steering-hard", Category: "Steering", Description: "Steering is hard or requires extra effort"},
	{ID: "steering-loose", Category: "Steering", Description: "Steering feels loose or has excessive play"},
	{ID: "steering-vibration", Category: "Steering", Description: "Steering wheel vibrates while driving"},
	{ID: "suspension-bouncing", Category: "Suspension", Description: "Vehicle bounces excessively over bumps"},
	{ID: "suspension-noise", Category: "Suspension", Description: "Clunking or rattling noise over bumps"},
	{ID: "exhaust-loud", Category: "Exhaust", Description: "Exhaust is louder than normal"},
	{ID: "exhaust-smoke-white", Category: "Exhaust", Description: "White smoke from exhaust"},
	{ID: "exhaust-smoke-blue", Category: "Exhaust", Description: "Blue smoke from exhaust"},
	{ID: "exhaust-smoke-black", Category: "Exhaust", Description: "Black smoke from exhaust"},
	{ID: "fuel-poor-mileage", Category: "Fuel System", Description: "Poor fuel economy"},
	{ID: "fuel-smell", Category: "Fuel System", Description: "Smell of gasoline inside or outside car"},
	{ID: "fuel-hesitation", Category: "Fuel System", Description: "Engine hesitates during acceleration"},
	{ID: "warning-check-engine", Category: "Warning Lights", Description: "Check Engine light is on"},
	{ID: "warning-abs", Category: "Warning Lights", Description: "ABS warning light is on"},
	{ID: "warning-airbag", Category: "Warning Lights", Description: "Airbag warning light is on"},
	{ID: "warning-oil", Category: "Warning Lights", Description: "Oil pressure warning light is on"},
	{ID: "warning-temperature", Category: "Warning Lights", Description: "Temperature warning light is on"},
}
