// Package logging provides structured logging for picopala commands.
//
// It wraps log/slog with a JSON handler writing to {dir}/picopala.log.
// Nothing is ever written to stdout or stderr: the hook commands use those
// streams to answer their host, so a stray log line would corrupt a reply.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("plan validated", "tasks", 12)
//
// # Context Propagation
//
// Child loggers carry persistent attributes into every entry:
//
//	cmdLogger := logger.WithCommand("waves").WithPlan("plan.md")
//	cmdLogger.Debug("computed waves", "count", 3)
//
// # Rotation
//
// [NewLoggerWithRotation] rotates picopala.log once it exceeds
// [RotationConfig.MaxSizeMB], keeping numbered backups (picopala.log.1 is
// the newest), optionally gzip compressed.
//
// # Testing
//
// [NopLogger] discards everything; [NewWriterLogger] writes to any
// io.Writer, which makes entries easy to assert on.
package logging
