/*
Package httpTransport provides a sample implementation of compax's transport interface
This implementation uses net/http and JSON to communicate with compax acceptors.
*/
package httpTransport

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/komuw/compax"
	"github.com/pkg/errors"
)

// Default URIs that NewHandler serves and NewHTTPtransport calls.
const (
	ProposeURI = "/propose"
	AcceptURI  = "/accept"
)

// HTTPtransport provides a http based transport that can be
// used to communicate with compax acceptors on remote machines.
type HTTPtransport struct {
	NodeAddrress string
	NodePort     string
	ProposeURI   string
	AcceptURI    string

	client *http.Client
}

// NewHTTPtransport returns a transport to the acceptor served by NewHandler at address:port.
func NewHTTPtransport(address, port string) *HTTPtransport {
	return &HTTPtransport{
		NodeAddrress: address,
		NodePort:     port,
		ProposeURI:   ProposeURI,
		AcceptURI:    AcceptURI,
		client:       &http.Client{Timeout: time.Second * 3},
	}
}

// TransportPropose implements the Transport interface.
func (ht *HTTPtransport) TransportPropose(req compax.ProposeRequest) (compax.ProposeReply, error) {
	reply := compax.ProposeReply{}
	err := ht.post(ht.ProposeURI, req, &reply)
	return reply, err
}

// TransportAccept implements the Transport interface.
func (ht *HTTPtransport) TransportAccept(req compax.AcceptRequest) (compax.AcceptReply, error) {
	reply := compax.AcceptReply{}
	err := ht.post(ht.AcceptURI, req, &reply)
	return reply, err
}

func (ht *HTTPtransport) post(uri string, in interface{}, out interface{}) error {
	url := "http://" + ht.NodeAddrress + ":" + ht.NodePort + uri
	reqJSON, err := json.Marshal(in)
	if err != nil {
		return errors.Wrapf(err, "unable to marshal request for url:%v", url)
	}
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(reqJSON))
	if err != nil {
		return errors.Wrapf(err, "unable to create request for url:%v", url)
	}
	req.Header.Set("Content-Type", "application/json")

	client := ht.client
	if client == nil {
		client = &http.Client{Timeout: time.Second * 3}
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "unable to reach url:%v", url)
	}
	defer resp.Body.Close() // nolint: errcheck
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "unable to read response from url:%v", url)
	}
	if resp.StatusCode == http.StatusBadRequest {
		return errors.Wrapf(compax.ErrMalformedRequest, "url:%v: %s", url, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("url:%v returned http status:%v instead of status:%v", url, resp.StatusCode, http.StatusOK)
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return errors.Wrapf(err, "unable to unmarshal response from url:%v", url)
	}
	return nil
}
