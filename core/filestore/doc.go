// Package filestore is the content store: it ingests file payloads into
// content-addressed, deduplicated records and serves them back by id.
//
// Every upload gets its own FileRecord with a freshly issued id, but payloads
// are deduplicated per bucket by their SHA-256 hash: the first upload of a
// payload becomes the canonical record (its ContentID equals its ID) and owns
// the stored blob; later identical uploads become dedup records that reuse the
// canonical ContentID, content type and dimensions without re-probing or
// re-storing the bytes.
//
// Ingestion stages the payload in blob storage, hashes it, consults the
// catalog, and either discards the staged bytes (duplicate) or probes, checks
// the bucket content policy and promotes them (new content). Outside the
// attachments bucket only gif, jpeg, png and webp payloads are accepted;
// everything else is rejected with ErrPolicyViolation before any bytes become
// visible. A failed ingestion never leaves a catalog row pointing at a missing
// blob.
//
// Two identical payloads ingested concurrently can both miss the duplicate
// lookup and race to insert the canonical record. The catalog resolves the
// race by refusing the second canonical insert with ErrContentExists; the
// loser deletes its own blob, re-reads the winner and records itself as a
// dedup row. The outcome is the same as a sequential upload pair.
//
//	store, err := filestore.New(gen, catalog, blobs, prober)
//	if err != nil {
//		return err
//	}
//	record, err := store.Ingest(ctx, data, "attachments", "cat.mp4", false)
//
// Catalogs come in two flavors: MemoryCatalog for tests and single-process
// use, and PostgresCatalog backed by pgx for deployments where several
// instances share one catalog.
package filestore
