// Package services implements the business logic layer of familymeter.
// It sits between the HTTP handlers and the domain packages so that handlers
// never touch files, parsers or chart code directly.
//
// # Pipeline
//
// PipelineService runs the whole measurement pipeline:
//
//	table.LoadFile -> family.Extractor.Extract -> grouping.Grouper.Group
//
// Every call to Run is an independent pass over the source file. Nothing is
// cached between runs, so editing the CSV and reloading the page shows the
// new data immediately. Each stage gets its own OpenTelemetry span and the
// run outcome is recorded in the pipeline metrics.
//
// # Errors
//
// Stage errors are returned unchanged so the HTTP layer can map them:
//
//	STORAGE (missing source)     -> 503
//	PARSING (bad date or height) -> 422
//	VALIDATION (unknown group)   -> 422
//
// # Health
//
// HealthService reports liveness, readiness (source file readable) and
// build information.
package services
