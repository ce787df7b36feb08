package compax

// InmemTransport Implements the Transport interface, to allow compax to be
// tested in-memory without going over a network.
type InmemTransport struct {
	Acceptor *Acceptor
}

// NewInmemTransport returns a transport that calls straight into a.
func NewInmemTransport(a *Acceptor) *InmemTransport {
	return &InmemTransport{Acceptor: a}
}

// TransportPropose implements the Transport interface.
func (it *InmemTransport) TransportPropose(req ProposeRequest) (ProposeReply, error) {
	return it.Acceptor.Propose(req)
}

// TransportAccept implements the Transport interface.
func (it *InmemTransport) TransportAccept(req AcceptRequest) (AcceptReply, error) {
	return it.Acceptor.Accept(req)
}
