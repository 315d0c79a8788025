// Package fixture builds object graphs from YAML documents.
//
// A fixture names nodes by a local key and wires them together with edges
// and memberships that refer to those keys:
//
//	nodes:
//	  - key: city
//	    name: Lisbon
//	    dimension: 1
//	    context: {population: 545000}
//	  - key: cafe
//	    name: A Brasileira
//	    entry_actions:
//	      - {name: greet, value: hello}
//	edges:
//	  - {from: cafe, to: cafe2, name: walks_to}
//	members:
//	  - {member: cafe, owner: city}
//
// Decoding is strict: unknown fields and references to undeclared keys are
// errors. Fixtures are used by tests and by `jsctl load`.
package fixture
