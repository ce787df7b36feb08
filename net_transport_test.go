package compax

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func newRPCCluster(t *testing.T, n int) ([]*Acceptor, []*httptest.Server, []Transport) {
	t.Helper()
	acceptors := make([]*Acceptor, n)
	servers := make([]*httptest.Server, n)
	transports := make([]Transport, n)
	for i := range acceptors {
		acceptors[i] = NewAcceptor(uint64(i + 1))
		rpcServer, err := NewRPCServer(acceptors[i])
		if err != nil {
			t.Fatalf("\nNewRPCServer() \nerror = %v", err)
		}
		servers[i] = httptest.NewServer(rpcServer)
		transports[i] = NewNetworkTransport(servers[i].Listener.Addr().String())
	}
	return acceptors, servers, transports
}

func closeAll(servers []*httptest.Server) {
	for _, s := range servers {
		s.Close()
	}
}

func TestNetworkTransport_Rounds(t *testing.T) {
	acceptors, servers, transports := newRPCCluster(t, 3)
	defer closeAll(servers)

	p1, err := NewProposer(1, NewInmemStore(), transports...)
	if err != nil {
		t.Fatalf("\nNewProposer() \nerror = %v", err)
	}
	result, err := p1.Propose(42)
	want := Result{Status: Ok, Ballot: ballot(1, 1), Value: 42}
	if err != nil || !reflect.DeepEqual(result, want) {
		t.Fatalf("\nproposer 1 Propose(42) \ngot = %#+v, \nwanted = %#+v, \nerror = %v", result, want, err)
	}

	p2, err := NewProposer(2, NewInmemStore(), transports...)
	if err != nil {
		t.Fatalf("\nNewProposer() \nerror = %v", err)
	}
	result, err = p2.Propose(7)
	want = Result{Status: Ok, Ballot: ballot(1, 2), Value: 42}
	if err != nil || !reflect.DeepEqual(result, want) {
		t.Fatalf("\nproposer 2 Propose(7) \ngot = %#+v, \nwanted = %#+v, \nerror = %v", result, want, err)
	}
	for _, a := range acceptors {
		if s := a.State(); s.AcceptedValue == nil || *s.AcceptedValue != 42 {
			t.Errorf("\nacceptor:%v state = %#+v, wanted 42", a.ID, s)
		}
	}
}

func TestNetworkTransport_ZeroValueSurvivesTheWire(t *testing.T) {
	_, servers, transports := newRPCCluster(t, 3)
	defer closeAll(servers)

	p1, err := NewProposer(1, NewInmemStore(), transports...)
	if err != nil {
		t.Fatalf("\nNewProposer() \nerror = %v", err)
	}
	if result, err := p1.Propose(0); err != nil || result.Status != Ok {
		t.Fatalf("\nproposer 1 Propose(0) \nresult = %#+v, \nerror = %v", result, err)
	}

	reply, err := transports[0].TransportPropose(ProposeRequest{Proposal: &Proposal{Ballot: ballot(5, 5)}})
	if err != nil {
		t.Fatalf("\nTransportPropose() \nerror = %v", err)
	}
	wantReply := ProposeReply{Status: StatusAccept, AcceptedProposal: &Proposal{Ballot: ballot(1, 1), Value: u64(0)}}
	if !reflect.DeepEqual(reply, wantReply) {
		t.Errorf("\nTransportPropose() \ngot = %#+v, \nwanted = %#+v", reply, wantReply)
	}
}

func TestNetworkTransport_Reject(t *testing.T) {
	_, servers, transports := newRPCCluster(t, 1)
	defer closeAll(servers)

	if _, err := transports[0].TransportPropose(ProposeRequest{Proposal: &Proposal{Ballot: ballot(3, 1)}}); err != nil {
		t.Fatalf("\nTransportPropose() \nerror = %v", err)
	}
	reply, err := transports[0].TransportAccept(AcceptRequest{Proposal: &Proposal{Ballot: ballot(2, 1), Value: u64(1)}})
	want := AcceptReply{Status: StatusReject, Promised: ballot(3, 1)}
	if err != nil || !reflect.DeepEqual(reply, want) {
		t.Errorf("\nTransportAccept() \ngot = %#+v, \nwanted = %#+v, \nerror = %v", reply, want, err)
	}
}

func TestNetworkTransport_Malformed(t *testing.T) {
	acceptors, servers, transports := newRPCCluster(t, 1)
	defer closeAll(servers)

	_, err := transports[0].TransportAccept(AcceptRequest{Proposal: &Proposal{Ballot: ballot(1, 1)}})
	if !IsMalformed(err) {
		t.Errorf("\nTransportAccept(no value) \nerror = %v, \nwanted ErrMalformedRequest", err)
	}
	_, err = transports[0].TransportPropose(ProposeRequest{})
	if !IsMalformed(err) {
		t.Errorf("\nTransportPropose(no proposal) \nerror = %v, \nwanted ErrMalformedRequest", err)
	}
	if !reflect.DeepEqual(acceptors[0].State(), AcceptorState{}) {
		t.Errorf("\nmalformed requests changed state \nstate = %#+v", acceptors[0].State())
	}
}

func TestNetworkTransport_Unreachable(t *testing.T) {
	_, servers, transports := newRPCCluster(t, 3)
	defer closeAll(servers[:2])
	servers[2].Close()

	p, err := NewProposer(1, NewInmemStore(), transports...)
	if err != nil {
		t.Fatalf("\nNewProposer() \nerror = %v", err)
	}
	result, err := p.Propose(42)
	if err == nil {
		t.Fatalf("\nproposer.Propose() with a stopped acceptor \nresult = %#+v, \nerror = nil", result)
	}
	if IsMalformed(err) {
		t.Errorf("\nunreachable acceptor reported as malformed request: %v", err)
	}
	if result.Status != Fail {
		t.Errorf("\nproposer.Propose() \nstatus = %v, \nwanted = %v", result.Status, Fail)
	}
}
