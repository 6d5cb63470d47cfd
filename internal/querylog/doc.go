// Package querylog defines the DNS query record streamed by the proxy's
// /log endpoint, together with the derived string views (date, rcode
// mnemonic, status label) that filters match against and the UI renders.
package querylog
