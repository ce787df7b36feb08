package compax

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedRequest is returned when a request is missing a field the protocol requires.
// It is never used to signal that a ballot lost; that is a StatusReject reply.
var ErrMalformedRequest = errors.New("malformed request")

// PhaseStatus is an acceptor's answer to a single Propose or Accept request.
type PhaseStatus int

const (
	// StatusReject means the acceptor has promised a fresher ballot.
	StatusReject PhaseStatus = iota
	// StatusAccept means the acceptor promised(phase 1) or accepted(phase 2) the ballot.
	StatusAccept
)

func (s PhaseStatus) String() string {
	switch s {
	case StatusAccept:
		return "Accept"
	case StatusReject:
		return "Reject"
	}
	return fmt.Sprintf("PhaseStatus(%d)", int(s))
}

// Proposal is a candidate value tagged with the ballot it is proposed or accepted under.
// A nil Value means no value is present.
type Proposal struct {
	Ballot BallotID
	Value  *uint64
}

// NewProposal returns a proposal carrying value v under ballot b.
func NewProposal(b BallotID, v uint64) Proposal {
	return Proposal{Ballot: b, Value: &v}
}

func (p Proposal) String() string {
	if p.Value == nil {
		return fmt.Sprintf("{%v: ø}", p.Ballot)
	}
	return fmt.Sprintf("{%v: %d}", p.Ballot, *p.Value)
}

// ProposeRequest is the phase-1 request a proposer sends to every acceptor.
type ProposeRequest struct {
	Proposal *Proposal
}

// ProposeReply is an acceptor's answer to a ProposeRequest.
// On StatusAccept, AcceptedProposal holds whatever the acceptor had accepted so far
// (its Value is nil if nothing was accepted yet).
// On StatusReject, AcceptedProposal is nil and Promised holds the ballot the acceptor is bound to.
type ProposeReply struct {
	Status           PhaseStatus
	AcceptedProposal *Proposal
	Promised         BallotID
}

// AcceptRequest is the phase-2 request a proposer sends to every acceptor.
type AcceptRequest struct {
	Proposal *Proposal
}

// AcceptReply is an acceptor's answer to an AcceptRequest.
// On StatusReject, Promised holds the ballot the acceptor is bound to.
type AcceptReply struct {
	Status   PhaseStatus
	Promised BallotID
}

func validateProposeRequest(req ProposeRequest) error {
	if req.Proposal == nil {
		return errors.Wrap(ErrMalformedRequest, "propose request has no proposal")
	}
	if req.Proposal.Ballot.IsZero() {
		return errors.Wrap(ErrMalformedRequest, "propose request has no ballot")
	}
	return nil
}

func validateAcceptRequest(req AcceptRequest) error {
	if req.Proposal == nil {
		return errors.Wrap(ErrMalformedRequest, "accept request has no proposal")
	}
	if req.Proposal.Ballot.IsZero() {
		return errors.Wrap(ErrMalformedRequest, "accept request has no ballot")
	}
	if req.Proposal.Value == nil {
		return errors.Wrapf(ErrMalformedRequest, "accept request for ballot:%v has no value", req.Proposal.Ballot)
	}
	return nil
}

// IsMalformed reports whether err was caused by a request that failed validation.
func IsMalformed(err error) bool {
	return err != nil && errors.Cause(err) == ErrMalformedRequest
}
