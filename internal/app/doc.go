// Package app wires configuration, telemetry, the pipeline service and the
// HTTP handlers into a runnable server.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, a YAML file and the environment
//	2. Initialize logging and OpenTelemetry
//	3. Build the pipeline and health services
//	4. Set up middleware and routes
//	5. Create the HTTP server
//
// # Usage
//
//	cfg, err := config.Load("configs/familymeter.yaml")
//	if err != nil {
//	    return err
//	}
//	a, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// Run blocks until SIGINT or SIGTERM, then drains active requests and flushes
// telemetry. Initialization errors are returned to the caller; the package
// never calls os.Exit.
package app
