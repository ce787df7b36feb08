/*
Package compax is a pure Go implementation of single-decree Paxos.

A set of acceptors agree on one uint64 value that any number of proposers try to get chosen.
Every round a proposer picks a fresh ballot (a local counter tie-broken by the proposer's ID),
asks all acceptors to promise it (phase 1), then asks them to accept a value under it (phase 2).
If some acceptor already accepted a value the proposer carries that value forward instead of its own,
which is what keeps two rounds from ever choosing different values.

Example usage:

	package main

	import (
		"fmt"

		"github.com/komuw/compax"
	)

	func main() {
		// Note that, in practice, acceptors ideally should be
		// in different machines; use compax.NewNetworkTransport to reach them.
		a1 := compax.NewAcceptor(1)
		a2 := compax.NewAcceptor(2)
		a3 := compax.NewAcceptor(3)

		// The store should, ideally be disk persisted so that the proposer
		// never reuses a ballot after a restart.
		// Any that implements hashicorp/raft StableStore interface will suffice.
		p, err := compax.NewProposer(1, compax.NewInmemStore(),
			compax.NewInmemTransport(a1),
			compax.NewInmemTransport(a2),
			compax.NewInmemTransport(a3))
		if err != nil {
			panic(err)
		}

		result, err := p.Propose(42)
		if err != nil {
			fmt.Printf("err: %v", err)
		}
		fmt.Printf("status: %v value: %v", result.Status, result.Value)
	}

Acceptor state is kept in memory only. A quorum is a strict majority: n/2+1 of n acceptors.
A round that cannot reach one of its acceptors is aborted with an error rather than
carried on with the remaining acceptors.
*/
package compax
