package config

// Application constants
const (
	AppName    = "Rodinný merač"
	AppVersion = "1.0.0"

	// Source table layout
	DefaultSourceFile = "rodinny_merac.csv"
	IdentityColumns   = 5
	DateLayout        = "02.01.2006"

	// Server defaults
	DefaultPort      = 8080
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Log settings
	DefaultLogLevel = "info"
	DefaultLogsDir  = "logs"

	// Telemetry
	ServiceName = "familymeter"
)
