// Package dispatch implements candidate matching and the accept race.
//
// A booking request is turned into a ranked pool of owner candidates by
// PoolBuilder, broadcast by Dispatcher and resolved by Resolver. Lifecycle
// covers the remaining booking transitions. Manager ties them to a
// store.Store and publishes events after each commit.
//
// The at-most-one-winner guarantee rests on Resolver.Accept running inside a
// transaction that locks the booking and confirms it with a compare-and-set
// on the accepted owner.
package dispatch
