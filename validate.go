package wren

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// validateFetchURL rejects fetch_page URLs before they ever reach the tool
// client: non-HTTP(S) schemes, a missing host, or a host that is a literal
// loopback/private/link-local address. Grounded on the source
// implementation's URL validator, minus its DNS-rebinding/private-IP regex
// sweep over the resolved address — wren never resolves the host itself,
// the tool server owns the actual fetch and whatever SSRF defenses it
// applies there, so only the literal-host cases are worth rejecting early.
func validateFetchURL(raw string) *AgentError {
	if strings.TrimSpace(raw) == "" {
		return NewAgentError(CodeMissingParameter, "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewAgentError(CodeFetchInvalidURL, fmt.Sprintf("invalid URL format: %v", err))
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return NewAgentError(CodeFetchInvalidURL, fmt.Sprintf("unsupported URL scheme %q; only http and https are allowed", u.Scheme))
	}
	host := u.Hostname()
	if host == "" {
		return NewAgentError(CodeFetchInvalidURL, "url must have a hostname")
	}
	if isBlockedFetchHost(host) {
		return NewAgentError(CodeInvalidURL, "cannot fetch localhost or private network URLs")
	}
	return nil
}

func isBlockedFetchHost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "0.0.0.0", "::1":
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
	}
	return false
}
