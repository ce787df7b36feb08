package httpTransport

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"

	"github.com/komuw/compax"
	"github.com/pkg/errors"
)

// NewHandler returns a http.Handler that serves acceptor a at ProposeURI and AcceptURI.
// Malformed requests get http status 400, everything else that the acceptor answers gets 200.
// logger may be nil.
func NewHandler(a *compax.Acceptor, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ProposeURI, proposeHandler(a, logger))
	mux.HandleFunc(AcceptURI, acceptHandler(a, logger))
	return mux
}

func proposeHandler(a *compax.Acceptor, logger *log.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		req := compax.ProposeRequest{}
		if !decode(w, r, &req, logger) {
			return
		}
		reply, err := a.Propose(req)
		if err != nil {
			writeError(w, err, logger)
			return
		}
		writeJSON(w, reply, logger)
	}
}

func acceptHandler(a *compax.Acceptor, logger *log.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		req := compax.AcceptRequest{}
		if !decode(w, r, &req, logger) {
			return
		}
		reply, err := a.Accept(req)
		if err != nil {
			writeError(w, err, logger)
			return
		}
		writeJSON(w, reply, logger)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}, logger *log.Logger) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		writeError(w, errors.Wrap(err, "unable to read request body"), logger)
		return false
	}
	err = json.Unmarshal(body, v)
	if err != nil {
		writeError(w, errors.Wrapf(compax.ErrMalformedRequest, "unable to unmarshal request: %v", err), logger)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error, logger *log.Logger) {
	if logger != nil {
		logger.Printf("request failed: %+v", err)
	}
	status := http.StatusInternalServerError
	if compax.IsMalformed(err) {
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v interface{}, logger *log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Printf("unable to write response: %v", err)
	}
}
