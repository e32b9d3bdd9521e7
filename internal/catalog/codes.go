package catalog

import "github.com/tjfontaine/autodiag/internal/domain"

// commonCodes is keyed by upper-case code.
var commonCodes = map[string]domain.DiagnosticCode{
	"P0300": {Code: "P0300", Description: "Random/Multiple Cylinder Misfire Detected", Severity: domain.SeverityHigh, System: "Engine"},
	"P0301": {Code: "P0301", Description: "Cylinder 1 Misfire Detected", Severity: domain.SeverityMedium, System: "Engine"},
	"P0302": {Code: "P0302", Description: "Cylinder 2 Misfire Detected", Severity: domain.SeverityMedium, System: "Engine"},
	"P0171": {Code: "P0171", Description: "System Too Lean (Bank 1)", Severity: domain.SeverityMedium, System: "Fuel System"},
	"P0172": {Code: "P0172", Description: "System Too Rich (Bank 1)", Severity: domain.SeverityMedium, System: "Fuel System"},
	"P0420": {Code: "P0420", Description: "Catalyst System Efficiency Below Threshold (Bank 1)", Severity: domain.SeverityMedium, System: "Emissions"},
	"P0430": {Code: "P0430", Description: "Catalyst System Efficiency Below Threshold (Bank 2)", Severity: domain.SeverityMedium, System: "Emissions"},
	"P0442": {Code: "P0442", Description: "Evaporative Emission Control System Leak Detected (small leak)", Severity: domain.SeverityLow, System: "Emissions"},
	"P0446": {Code: "P0446", Description: "Evaporative Emission Control System Vent Control Circuit Malfunction", Severity: domain.SeverityLow, System: "Emissions"},
	"P0128": {Code: "P0128", Description: "Coolant Thermostat (Coolant Temperature Below Thermostat Regulating Temperature)", Severity: domain.SeverityMedium, System: "Cooling"},
	"P0401": {Code: "P0401", Description: "Exhaust Gas Recirculation Flow Insufficient Detected", Severity: domain.SeverityMedium, System: "Emissions"},
	"P0404": {Code: "P0404", Description: "Exhaust Gas Recirculation Circuit Range/Performance", Severity: domain.SeverityMedium, System: "Emissions"},
	"P0461": {Code: "P0461", Description: "Fuel Level Sensor Circuit Range/Performance", Severity: domain.SeverityLow, System: "Fuel System"},
	"P0506": {Code: "P0506", Description: "Idle Control System RPM Lower Than Expected", Severity: domain.SeverityMedium, System: "Engine"},
	"P0507": {Code: "P0507", Description: "Idle Control System RPM Higher Than Expected", Severity: domain.SeverityMedium, System: "Engine"},
	"P0740": {Code: "P0740", Description: "Torque Converter Clutch Circuit Malfunction", Severity: domain.SeverityMedium, System: "Transmission"},
	"P0750": {Code: "P0750", Description: "Shift Solenoid A Malfunction", Severity: domain.SeverityHigh, System: "Transmission"},
	"B1000": {Code: "B1000", Description: "ECU Defective", Severity: domain.SeverityCritical, System: "Engine Control"},
	"C0000": {Code: "C0000", Description: "No Chassis Codes Set", Severity: domain.SeverityLow, System: "Chassis"},
	"U0100": {Code: "U0100", Description: "Lost Communication With ECM/PCM", Severity: domain.SeverityCritical, System: "Network"},
}
