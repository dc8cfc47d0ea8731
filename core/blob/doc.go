// Package blob stores file payloads under (bucket, id) keys with a staging
// step that makes ingestion atomic.
//
// A payload is first written to a staging location while its hash is computed
// and its metadata extracted. Only once the file's catalog row is in place does
// Promote move the bytes to their final key; a duplicate or rejected upload is
// Discarded instead. Readers only ever see promoted blobs, so a crash mid-
// ingest leaves stray staging entries but never a half-visible file.
//
//	storage, err := blob.NewLocal("/var/lib/filevault")
//	if err != nil {
//		return err
//	}
//	size, err := storage.Stage(ctx, "attachments", id, payload)
//	...
//	if err := storage.Promote(ctx, "attachments", id); err != nil {
//		return err
//	}
//
// NewLocal keeps blobs on the local filesystem; the integration/storage/s3
// package provides the same interface backed by S3-compatible object storage.
package blob
