package compax

import (
	"net/rpc"
	"strings"

	"github.com/pkg/errors"
)

// DefaultRPCPath is the http path that NewRPCServer expects rpc connections on.
const DefaultRPCPath = "/_compaxRPC_"

// rpcServiceName is the name the acceptor is registered under with net/rpc.
const rpcServiceName = "Acceptor"

// RPCProposal is the gob encoded form of a Proposal.
// gob does not transmit zero values, so a pointer to 0 would arrive as nil;
// presence is therefore sent explicitly.
type RPCProposal struct {
	Ballot   BallotID
	Value    uint64
	HasValue bool
}

// RPCProposeRequest is the net/rpc form of ProposeRequest.
type RPCProposeRequest struct {
	Proposal    RPCProposal
	HasProposal bool
}

// RPCProposeResponse is the net/rpc form of ProposeReply.
type RPCProposeResponse struct {
	Status           PhaseStatus
	AcceptedProposal RPCProposal
	HasAccepted      bool
	Promised         BallotID
}

// RPCAcceptRequest is the net/rpc form of AcceptRequest.
type RPCAcceptRequest struct {
	Proposal    RPCProposal
	HasProposal bool
}

// RPCAcceptResponse is the net/rpc form of AcceptReply.
type RPCAcceptResponse struct {
	Status   PhaseStatus
	Promised BallotID
}

func toRPCProposal(p *Proposal) (RPCProposal, bool) {
	if p == nil {
		return RPCProposal{}, false
	}
	rp := RPCProposal{Ballot: p.Ballot}
	if p.Value != nil {
		rp.Value = *p.Value
		rp.HasValue = true
	}
	return rp, true
}

func fromRPCProposal(rp RPCProposal, present bool) *Proposal {
	if !present {
		return nil
	}
	p := &Proposal{Ballot: rp.Ballot}
	if rp.HasValue {
		v := rp.Value
		p.Value = &v
	}
	return p
}

// AcceptorService exposes an Acceptor over net/rpc.
type AcceptorService struct {
	acceptor *Acceptor
}

// Propose is the net/rpc entry point for phase 1.
func (s *AcceptorService) Propose(req RPCProposeRequest, resp *RPCProposeResponse) error {
	reply, err := s.acceptor.Propose(ProposeRequest{Proposal: fromRPCProposal(req.Proposal, req.HasProposal)})
	if err != nil {
		return err
	}
	resp.Status = reply.Status
	resp.AcceptedProposal, resp.HasAccepted = toRPCProposal(reply.AcceptedProposal)
	resp.Promised = reply.Promised
	return nil
}

// Accept is the net/rpc entry point for phase 2.
func (s *AcceptorService) Accept(req RPCAcceptRequest, resp *RPCAcceptResponse) error {
	reply, err := s.acceptor.Accept(AcceptRequest{Proposal: fromRPCProposal(req.Proposal, req.HasProposal)})
	if err != nil {
		return err
	}
	resp.Status = reply.Status
	resp.Promised = reply.Promised
	return nil
}

// NewRPCServer creates a net/rpc server serving a.
// The returned server is an http.Handler; mount it at DefaultRPCPath.
func NewRPCServer(a *Acceptor) (*rpc.Server, error) {
	server := rpc.NewServer()
	err := server.RegisterName(rpcServiceName, &AcceptorService{acceptor: a})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to register acceptor:%v", a.ID)
	}
	return server, nil
}

/*
NetworkTransport provides a network based transport that can be
used to communicate with a compax acceptor on a remote machine.
Requests are made with net/rpc over HTTP, with a fresh connection per call.
*/
type NetworkTransport struct {
	nodeAddress string
	rpcPath     string
}

// NewNetworkTransport is used to initialize a new transport to the acceptor listening on nodeAddress(host:port).
func NewNetworkTransport(nodeAddress string) *NetworkTransport {
	return &NetworkTransport{nodeAddress: nodeAddress, rpcPath: DefaultRPCPath}
}

// TransportPropose implements the Transport interface.
func (n *NetworkTransport) TransportPropose(req ProposeRequest) (ProposeReply, error) {
	rpcReq := RPCProposeRequest{}
	rpcReq.Proposal, rpcReq.HasProposal = toRPCProposal(req.Proposal)
	var resp RPCProposeResponse
	if err := n.sendRPC(rpcServiceName+".Propose", rpcReq, &resp); err != nil {
		return ProposeReply{}, err
	}
	return ProposeReply{
		Status:           resp.Status,
		AcceptedProposal: fromRPCProposal(resp.AcceptedProposal, resp.HasAccepted),
		Promised:         resp.Promised,
	}, nil
}

// TransportAccept implements the Transport interface.
func (n *NetworkTransport) TransportAccept(req AcceptRequest) (AcceptReply, error) {
	rpcReq := RPCAcceptRequest{}
	rpcReq.Proposal, rpcReq.HasProposal = toRPCProposal(req.Proposal)
	var resp RPCAcceptResponse
	if err := n.sendRPC(rpcServiceName+".Accept", rpcReq, &resp); err != nil {
		return AcceptReply{}, err
	}
	return AcceptReply{Status: resp.Status, Promised: resp.Promised}, nil
}

// sendRPC sends the appropriate RPC to the target node.
func (n *NetworkTransport) sendRPC(rpcMethod string, req interface{}, resp interface{}) error {
	client, err := rpc.DialHTTPPath("tcp", n.nodeAddress, n.rpcPath)
	if err != nil {
		return errors.Wrapf(err, "unable to dial acceptor at address:%v", n.nodeAddress)
	}
	defer client.Close() // nolint: errcheck

	err = client.Call(rpcMethod, req, resp)
	if serverErr, ok := err.(rpc.ServerError); ok && strings.Contains(string(serverErr), ErrMalformedRequest.Error()) {
		// the error text is all that survives the wire.
		return errors.Wrapf(ErrMalformedRequest, "acceptor at address:%v: %v", n.nodeAddress, serverErr)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to call rpcMethod:%v of acceptor at address:%v", rpcMethod, n.nodeAddress)
	}
	return nil
}
