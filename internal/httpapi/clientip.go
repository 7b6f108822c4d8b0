package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// proxySet holds the peers whose X-Forwarded-For header is believed.
type proxySet map[string]struct{}

func newProxySet(addrs []string) proxySet {
	set := make(proxySet, len(addrs))
	for _, addr := range addrs {
		set[strings.TrimSpace(addr)] = struct{}{}
	}
	return set
}

func (p proxySet) trusted(ip string) bool {
	_, ok := p[ip]
	return ok
}

// clientIP returns the socket peer address. X-Forwarded-For is only consulted
// when the peer is a trusted proxy; the chain is walked right to left and the
// first hop that is not itself a trusted proxy is the client.
func (p proxySet) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !p.trusted(peer) {
		return peer
	}
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return peer
	}
	hops := strings.Split(forwarded, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !p.trusted(hop) {
			return hop
		}
		peer = hop
	}
	return peer
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
