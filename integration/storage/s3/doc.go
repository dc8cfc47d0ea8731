// Package s3 implements the core/blob storage contract on Amazon S3 and
// S3-compatible services.
//
// Blobs live under `<bucket>/<id>` object keys inside a single S3 bucket,
// with staged payloads parked under `<bucket>/staging/<id>`. Promote is a
// server-side copy followed by a delete of the staged key, so payload bytes
// never round-trip through the service during promotion.
//
// The package supports MinIO, Wasabi and other S3-compatible endpoints via
// S3_ENDPOINT and path-style addressing. Credentials fall back to the AWS
// default chain (IAM roles, env vars) when not set explicitly.
//
//	var cfg s3.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	storage, err := s3.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	store, err := filestore.New(gen, catalog, storage, prober)
//
// S3 failures are classified onto the core/blob sentinels, so callers handle
// local-disk and S3 backends identically.
package s3
