// Package logger provides nil-safe slog attribute helpers shared by all
// filevault components.
//
// Helpers return an empty slog.Attr for zero values, so call sites never need
// explicit nil checks:
//
//	log.Info("file ingested",
//		logger.Bucket("attachments"),
//		logger.FileID(rec.ID),
//		logger.Error(err), // no-op when err is nil
//	)
//
// Components in this repository log through a plain *slog.Logger injected via a
// functional option and default to a discard handler, keeping the library quiet
// unless the embedding application asks otherwise.
package logger
