// Package http implements the HTTP handlers of the chart viewer. Handlers stay
// thin: they call the pipeline service, then shape its result as JSON, an
// image, a download or the HTML dashboard.
//
// Every request runs the pipeline afresh, so edits to the measurement table
// show up on the next reload without a restart.
//
// Failures are written as RFC 7807 problem documents through
// errors.ErrorHandler. The dashboard renders the same problem as an HTML page
// with the matching status code.
package http
