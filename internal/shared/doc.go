// Package shared holds helpers used by more than one familymeter package.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler, an slog.Handler that keeps records in memory so
//     tests can assert on log output
//   - measurement table fixtures written to a temporary directory
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//		logger, logs := testutil.NewTestLogger(t)
//		path := testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV)
//		...
//		testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing here may import domain packages, so any package can use it from
// its tests without cycles.
package shared
