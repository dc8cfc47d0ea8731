// Package idgen issues the durable numeric identifiers handed out for every
// ingested file.
//
// Identifiers are snowflake-style int64 values: time-ordered across the
// process, unique across cooperating instances as long as each instance runs
// with a distinct instance salt. The salt is hashed into the generator's node
// identifier, so two gateways sharing a catalog should be configured with
// different salts (the default is a random UUID, which satisfies this without
// coordination).
//
// The generator is an explicit handle, not ambient global state: construct one
// at startup and pass it to every component that reserves identifiers.
//
//	gen, err := idgen.New(idgen.Config{InstanceSalt: "gateway-eu-1"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	id := gen.Next()
//
// Next is safe for concurrent use; the issue path is serialized internally and
// the critical section covers only the clock read and sequence increment, never
// surrounding I/O.
package idgen
