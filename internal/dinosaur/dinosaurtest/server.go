// Package dinosaurtest serves a fake dinosaur proxy API for tests.
package dinosaurtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// Empty is the params type of every api method.
type Empty struct{}

// CacheDebugReply is the api.CacheDebug result.
type CacheDebugReply struct {
	Entries []string `json:"entries"`
}

// BlockListCountReply is the api.BlockListCount result.
type BlockListCountReply struct {
	Count int `json:"count"`
}

// API is the JSON-RPC "api" service. Err, when set, fails every call; a
// *json2.Error keeps its code, anything else is reported as -32000.
type API struct {
	UserConfig     map[string]any
	Entries        []string
	BlockListTotal int
	Err            error

	mu    sync.Mutex
	calls []string
}

func (a *API) record(method string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, method)
	return a.Err
}

// Calls lists the methods served so far, in order.
func (a *API) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *API) Config(_ *http.Request, _ *Empty, reply *map[string]any) error {
	if err := a.record("api.Config"); err != nil {
		return err
	}
	*reply = a.UserConfig
	return nil
}

func (a *API) CacheDebug(_ *http.Request, _ *Empty, reply *CacheDebugReply) error {
	if err := a.record("api.CacheDebug"); err != nil {
		return err
	}
	reply.Entries = append([]string(nil), a.Entries...)
	return nil
}

func (a *API) BlockListCount(_ *http.Request, _ *Empty, reply *BlockListCountReply) error {
	if err := a.record("api.BlockListCount"); err != nil {
		return err
	}
	reply.Count = a.BlockListTotal
	return nil
}

// NewServer serves api on POST /api and answers GET /ping with PONG. The
// server is closed when the test ends.
func NewServer(t testing.TB, api *API) *httptest.Server {
	t.Helper()
	s := rpc.NewServer()
	s.RegisterCodec(json2.NewCodec(), "application/json")
	if err := s.RegisterService(api, "api"); err != nil {
		t.Fatalf("register api service: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api", s)
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "PONG")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
