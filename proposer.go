package compax

import (
	"log"
	"math"
	"sync"

	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
)

var (
	errNoAcceptors      = errors.New("proposer has no acceptors")
	errBallotsExhausted = errors.New("proposer has used up its propose numbers")
)

// ProposalStatus is the outcome of one full round.
type ProposalStatus int

const (
	// Fail means a quorum was not reached in one of the phases. The caller may retry with a new round.
	Fail ProposalStatus = iota
	// Ok means a quorum of acceptors accepted the proposal in phase 2.
	Ok
)

func (s ProposalStatus) String() string {
	if s == Ok {
		return "Ok"
	}
	return "Fail"
}

// Result is what Propose reports back to the caller.
// Value is the value that was sent in phase 2; it differs from the caller's value
// when an acceptor reported a previously accepted value. Value is meaningless if phase 1 failed.
type Result struct {
	Status ProposalStatus
	Ballot BallotID
	Value  uint64
}

// quorumSize is the number of acceptors that make up a majority of n.
func quorumSize(n int) int {
	return n/2 + 1
}

// quorumReached reports whether numAccepted replies out of n form a majority.
// Exactly quorumSize(n) acceptances is enough.
func quorumReached(numAccepted, n int) bool {
	return numAccepted >= quorumSize(n)
}

// Proposer drives rounds against a fixed set of acceptors.
// Proposers keep minimal state needed to generate unique increasing ballots;
// the system may have arbitrary numbers of proposers as long as each has a distinct ID.
// A Proposer is safe for concurrent use: ballot allocation is serialized, the rounds themselves are not.
type Proposer struct {
	ID        uint64
	acceptors []Transport

	sync.Mutex    // protects proposeNumber
	proposeNumber uint64

	// store keeps proposeNumber across restarts.
	store  StableStore
	logger *log.Logger
}

// NewProposer creates a proposer with the given ID that talks to acceptors.
// The last propose number used by this ID is loaded from store so rounds keep increasing across restarts.
func NewProposer(ID uint64, store StableStore, acceptors ...Transport) (*Proposer, error) {
	n, err := loadProposeNumber(store, ID)
	if err != nil {
		return nil, err
	}
	return &Proposer{ID: ID, acceptors: acceptors, proposeNumber: n, store: store}, nil
}

// AddTransport adds an acceptor to the proposer.
func (p *Proposer) AddTransport(t Transport) {
	p.Lock()
	defer p.Unlock()
	p.acceptors = append(p.acceptors, t)
}

// AddLogger makes the proposer log the outcome of each round. A nil logger silences it.
// It must be called before the first call to Propose.
func (p *Proposer) AddLogger(logger *log.Logger) {
	p.logger = logger
}

// nextBallot monotonically increases the propose number and returns the ballot for a new round.
func (p *Proposer) nextBallot() (BallotID, []Transport, error) {
	p.Lock()
	defer p.Unlock()

	if len(p.acceptors) == 0 {
		return BallotID{}, nil, errNoAcceptors
	}
	if p.proposeNumber == math.MaxUint64 {
		return BallotID{}, nil, errors.Wrapf(errBallotsExhausted, "proposer:%v", p.ID)
	}
	n := p.proposeNumber + 1
	if err := saveProposeNumber(p.store, p.ID, n); err != nil {
		return BallotID{}, nil, err
	}
	p.proposeNumber = n

	acceptors := make([]Transport, len(p.acceptors))
	copy(acceptors, p.acceptors)
	return BallotID{ProposeNumber: n, ProposerID: p.ID}, acceptors, nil
}

// observe moves the propose number past a ballot that some acceptor is bound to,
// so that the next round is not rejected for the same reason.
func (p *Proposer) observe(promised BallotID) {
	p.Lock()
	defer p.Unlock()
	if promised.ProposeNumber > p.proposeNumber {
		p.proposeNumber = promised.ProposeNumber
	}
}

// Propose runs one full two-phase round trying to get value chosen.
// The round fails (Status Fail, nil error) if either phase does not reach a quorum.
// If any acceptor cannot be reached the whole round is aborted with that error;
// no retries are made, see ProposeWithRetry for that.
func (p *Proposer) Propose(value uint64) (Result, error) {
	b, acceptors, err := p.nextBallot()
	if err != nil {
		return Result{Status: Fail}, err
	}
	result := Result{Status: Fail, Ballot: b, Value: value}

	// phase 1
	proposal := NewProposal(b, value)
	proposeReplies, err := sendPropose(acceptors, ProposeRequest{Proposal: &proposal})
	if err != nil {
		return result, errors.Wrapf(err, "phase 1 of ballot:%v aborted", b)
	}
	numAccepted, highest := 0, BallotID{}
	for _, r := range proposeReplies {
		if r.Status == StatusAccept {
			numAccepted++
		} else if highest.Less(r.Promised) {
			highest = r.Promised
		}
	}
	if !quorumReached(numAccepted, len(acceptors)) {
		p.observe(highest)
		p.logf("ballot:%v phase 1 got %d of %d promises", b, numAccepted, len(acceptors))
		return result, nil
	}

	// carry forward the freshest value any acceptor has already accepted.
	if prior := chooseValue(proposeReplies); prior != nil {
		proposal.Value = prior.Value
		result.Value = *prior.Value
	}

	// phase 2
	acceptReplies, err := sendAccept(acceptors, AcceptRequest{Proposal: &proposal})
	if err != nil {
		return result, errors.Wrapf(err, "phase 2 of ballot:%v aborted", b)
	}
	numAccepted, highest = 0, BallotID{}
	for _, r := range acceptReplies {
		if r.Status == StatusAccept {
			numAccepted++
		} else if highest.Less(r.Promised) {
			highest = r.Promised
		}
	}
	if !quorumReached(numAccepted, len(acceptors)) {
		p.observe(highest)
		p.logf("ballot:%v phase 2 got %d of %d accepts", b, numAccepted, len(acceptors))
		return result, nil
	}

	result.Status = Ok
	if p.logger != nil {
		p.logger.Printf("ballot:%v chosen %s", b, litter.Sdump(result))
	}
	return result, nil
}

// chooseValue returns, among the promises that carry a previously accepted value,
// the one with the greatest ballot. It returns nil if no acceptor has accepted anything.
func chooseValue(replies []ProposeReply) *Proposal {
	var chosen *Proposal
	for _, r := range replies {
		if r.Status != StatusAccept || r.AcceptedProposal == nil || r.AcceptedProposal.Value == nil {
			continue
		}
		if chosen == nil || chosen.Ballot.Less(r.AcceptedProposal.Ballot) {
			chosen = r.AcceptedProposal
		}
	}
	return chosen
}

// sendPropose sends req to every acceptor concurrently and waits for all of them.
// Replies are in the same order as acceptors. The first transport error wins.
func sendPropose(acceptors []Transport, req ProposeRequest) ([]ProposeReply, error) {
	type proposeResult struct {
		i     int
		reply ProposeReply
		err   error
	}
	proposeResultChan := make(chan proposeResult, len(acceptors))
	for i, a := range acceptors {
		go func(i int, a Transport) {
			reply, err := a.TransportPropose(req)
			proposeResultChan <- proposeResult{i, reply, err}
		}(i, a)
	}

	var firstErr error
	replies := make([]ProposeReply, len(acceptors))
	for range acceptors {
		res := <-proposeResultChan
		if res.err != nil && firstErr == nil {
			firstErr = errors.Wrapf(res.err, "acceptor #%d", res.i)
		}
		replies[res.i] = res.reply
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return replies, nil
}

// sendAccept is the phase 2 counterpart of sendPropose.
func sendAccept(acceptors []Transport, req AcceptRequest) ([]AcceptReply, error) {
	type acceptResult struct {
		i     int
		reply AcceptReply
		err   error
	}
	acceptResultChan := make(chan acceptResult, len(acceptors))
	for i, a := range acceptors {
		go func(i int, a Transport) {
			reply, err := a.TransportAccept(req)
			acceptResultChan <- acceptResult{i, reply, err}
		}(i, a)
	}

	var firstErr error
	replies := make([]AcceptReply, len(acceptors))
	for range acceptors {
		res := <-acceptResultChan
		if res.err != nil && firstErr == nil {
			firstErr = errors.Wrapf(res.err, "acceptor #%d", res.i)
		}
		replies[res.i] = res.reply
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return replies, nil
}

func (p *Proposer) logf(format string, args ...interface{}) {
	if p.logger == nil {
		return
	}
	p.logger.Printf(format, args...)
}
