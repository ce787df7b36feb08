package compax

import (
	"log"
	"sync"

	"github.com/sanity-io/litter"
)

// AcceptorState is the state that is maintained by an acceptor for one consensus instance.
// AcceptedValue is nil until the acceptor accepts a proposal.
type AcceptorState struct {
	HighestNumber  BallotID
	AcceptedNumber BallotID
	AcceptedValue  *uint64
}

// Acceptor stores the accepted value of a single consensus instance;
// the system should have 2F+1 acceptors to tolerate F failures.
// The "propose" and "accept" transitions read and then conditionally write the same fields
// so they are mutually exclusive; calls on different Acceptors never contend.
// Acceptor state lives in memory only and is lost when the process exits.
type Acceptor struct {
	ID uint64

	sync.Mutex // protects state
	state      AcceptorState

	logger *log.Logger
}

// NewAcceptor creates an acceptor with an empty state.
func NewAcceptor(ID uint64) *Acceptor {
	return &Acceptor{ID: ID}
}

// AddLogger makes the acceptor log every request it serves. A nil logger silences it.
// It must be called before the acceptor is handed to a transport.
func (a *Acceptor) AddLogger(logger *log.Logger) {
	a.logger = logger
}

// State returns a copy of the acceptor's current state.
func (a *Acceptor) State() AcceptorState {
	a.Lock()
	defer a.Unlock()
	s := a.state
	if s.AcceptedValue != nil {
		v := *s.AcceptedValue
		s.AcceptedValue = &v
	}
	return s
}

// OnPropose handles phase 1 for the acceptor.
// If the ballot is fresher than every ballot seen so far, the acceptor promises not to accept
// anything older and replies with the proposal it has accepted, if any, so that the proposer can
// carry it forward instead of overwriting it.
// An acceptor that has accepted nothing is still bound by its promise; only a strictly fresher ballot gets through.
// Otherwise it rejects and leaves its state untouched.
func (a *Acceptor) OnPropose(p Proposal) ProposeReply {
	a.Lock()
	defer a.Unlock()

	if !a.state.HighestNumber.Less(p.Ballot) {
		return ProposeReply{Status: StatusReject, Promised: a.state.HighestNumber}
	}
	a.state.HighestNumber = p.Ballot

	accepted := &Proposal{Ballot: a.state.AcceptedNumber}
	if a.state.AcceptedValue != nil {
		v := *a.state.AcceptedValue
		accepted.Value = &v
	}
	return ProposeReply{Status: StatusAccept, AcceptedProposal: accepted}
}

// OnAccept handles phase 2 for the acceptor.
// A proposal at exactly the promised ballot is accepted, which lets the proposer that won phase 1 finalize.
// p.Value must be present; requests coming off the wire are checked by Accept before they get here.
func (a *Acceptor) OnAccept(p Proposal) AcceptReply {
	v := *p.Value

	a.Lock()
	defer a.Unlock()

	if p.Ballot.Less(a.state.HighestNumber) {
		return AcceptReply{Status: StatusReject, Promised: a.state.HighestNumber}
	}
	a.state.AcceptedNumber = p.Ballot
	a.state.AcceptedValue = &v
	a.state.HighestNumber = p.Ballot
	return AcceptReply{Status: StatusAccept}
}

// Propose validates a phase-1 request and applies it to the state machine.
// Every transport calls this rather than OnPropose.
func (a *Acceptor) Propose(req ProposeRequest) (ProposeReply, error) {
	if err := validateProposeRequest(req); err != nil {
		a.logf("acceptor:%v rejected malformed propose request: %v", a.ID, err)
		return ProposeReply{}, err
	}
	reply := a.OnPropose(*req.Proposal)
	if a.logger != nil {
		a.logger.Printf("acceptor:%v propose %v -> %s", a.ID, req.Proposal, litter.Sdump(reply))
	}
	return reply, nil
}

// Accept validates a phase-2 request and applies it to the state machine.
// A request without a value fails with ErrMalformedRequest and never reaches OnAccept.
func (a *Acceptor) Accept(req AcceptRequest) (AcceptReply, error) {
	if err := validateAcceptRequest(req); err != nil {
		a.logf("acceptor:%v rejected malformed accept request: %v", a.ID, err)
		return AcceptReply{}, err
	}
	reply := a.OnAccept(*req.Proposal)
	a.logf("acceptor:%v accept %v -> %v", a.ID, req.Proposal, reply.Status)
	return reply, nil
}

func (a *Acceptor) logf(format string, args ...interface{}) {
	if a.logger == nil {
		return
	}
	a.logger.Printf(format, args...)
}
