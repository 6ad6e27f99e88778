// Package logging builds the hub's zap loggers.
//
// The server logs to stdout and to hub.log in the install directory, as
// JSON in production and as colored console output with LOG_DEV. Entries
// at error level or above are also teed into hub-error.log, so failures
// can be read without the request noise around them.
//
// The stop and status commands log only with -dev, through NewDevelopment,
// which writes debug output to stderr.
//
//	logger, err := logging.New(logging.Config{
//		Level:       "info",
//		OutputPaths: []string{"stdout", install.Log()},
//		ErrorPaths:  []string{install.ErrorLog()},
//	})
//	defer logger.Close()
package logging
