// Package log provides the logging abstraction used by rdsparse.
//
// Library code in pkg/rds and internal/app logs through the [Logger]
// interface so it can run silently in tests and as an embedded library.
// The CLI plugs in [ZerologAdapter]:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	logger.Info("wrote channel file", log.String("channel", "958"))
//
// Use [NewNoopLogger] to discard output.
package log
