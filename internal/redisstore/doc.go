// Package redisstore provides a Redis-backed graph.Backend.
//
// Each entity row is one hash:
//
//	<prefix>:obj:<id>  owner_id user name kind type ts body
//
// and two sets index it for listing:
//
//	<prefix>:user:<user>               every id the user owns
//	<prefix>:user:<user>:type:<type>   ids of one entity type
//
// Apply writes a whole batch inside MULTI/EXEC, so readers never observe a
// half-applied batch. Listing reads the index set, fetches the hashes in one
// pipeline and sorts by (ts, id) client-side for deterministic order.
package redisstore
