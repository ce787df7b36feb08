package compax

// Transport provides an interface for network transports
// to allow a proposer to reach one acceptor.
// An error means the acceptor could not be reached or refused the request as malformed;
// a lost ballot is reported through the reply's Status instead.
type Transport interface {
	TransportPropose(req ProposeRequest) (ProposeReply, error)
	TransportAccept(req AcceptRequest) (AcceptReply, error)
}
