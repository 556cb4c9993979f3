package logger

import "strings"

// RedactEmail masks the local part of an address so customer records can
// show up in logs without identifying anyone. The domain is left visible
// because it is usually what debugging needs.
func RedactEmail(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(local) <= 2 {
		return "***@" + domain
	}
	return local[:2] + "***@" + domain
}
