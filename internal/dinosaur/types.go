package dinosaur

import "fmt"

// UserConfig mirrors the proxy's api.Config result.
type UserConfig struct {
	Listen             []string `json:"listen"`
	Upstream           []string `json:"upstream"`
	ACL                []string `json:"acl"`
	Block              []string `json:"block"`
	BlockDelete        []string `json:"block-delete"`
	Blocklist          []string `json:"blocklist"`
	BlocklistAAAA      []string `json:"blocklist-aaaa"`
	BlocklistFromHosts []string `json:"blocklist-from-hosts"`
	LocalRR            []string `json:"localrr"`
	Localzone          []string `json:"localzone"`
	DNS64              bool     `json:"dns64"`
	DNS64Prefix        string   `json:"dns64-prefix"`
	API                bool     `json:"api"`
	APIBind            string   `json:"api-bind"`
	Refresh            bool     `json:"refresh"`
	RefreshInterval    string   `json:"refresh-interval"`
	Debug              bool     `json:"debug"`
	Syslog             bool     `json:"syslog"`
	Discard            bool     `json:"discard"`
	Setuid             string   `json:"setuid"`
}

type cacheDebugResult struct {
	Entries []string `json:"entries"`
}

type blockListCountResult struct {
	Count int `json:"count"`
}

// RPCError is a JSON-RPC error object returned by the proxy.
type RPCError struct {
	Code    int
	Message string
	Data    any
	Method  string
}

func (e *RPCError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("rpc %s: %s (code %d)", e.Method, e.Message, e.Code)
	}
	return fmt.Sprintf("rpc: %s (code %d)", e.Message, e.Code)
}

// Event is one dispatched server-sent event.
type Event struct {
	ID   string
	Type string
	Data string
}
