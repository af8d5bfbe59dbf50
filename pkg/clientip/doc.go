// Package clientip resolves the address that delivered an HTTP request and
// matches it against an allowlist of networks.
//
// Forwarding headers are only honoured when the caller says the receiver
// runs behind a trusted proxy. In that case the lookup order is:
//
//  1. CF-Connecting-IP
//  2. X-Forwarded-For (first entry)
//  3. X-Real-IP
//  4. RemoteAddr
//
// # Usage
//
//	list, err := clientip.ParseAllowlist("203.0.113.0/24", "198.51.100.7")
//	if err != nil {
//		return err
//	}
//	addr, _ := clientip.FromRequest(r, false)
//	if !list.Allows(addr) {
//		http.Error(w, "forbidden", http.StatusForbidden)
//	}
package clientip
