// Copyright 2025 NL2Flow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// EndpointOptions configures endpoint URL validation for HTTP-backed
// modules (OpenSearch, Prometheus, push gateways).
type EndpointOptions struct {
	// AllowedSchemes specifies permitted URL schemes (default: ["https", "http"])
	AllowedSchemes []string
	// AllowedHosts restricts endpoints to specific exact hostnames
	AllowedHosts []string
	// AllowedHostSuffixes restricts endpoints to specific domain suffixes,
	// e.g. [".svc.cluster.local"]
	AllowedHostSuffixes []string
	// BlockedHosts explicitly blocks certain hostnames
	BlockedHosts []string
	// BlockPrivateIPs rejects endpoints resolving to private or internal
	// addresses. Off by default: catalog modules usually target in-VPC
	// services that only resolve privately.
	BlockPrivateIPs bool
}

// ValidateEndpoint validates a module endpoint URL against the given rules.
// It checks URL format, scheme, hostname presence, and the host
// allowlist/blocklist. With BlockPrivateIPs set it also resolves the host
// and rejects private or internal addresses.
func ValidateEndpoint(rawURL string, opts EndpointOptions) error {
	if rawURL == "" {
		return fmt.Errorf("endpoint URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}

	if err := validateScheme(parsedURL.Scheme, opts.AllowedSchemes); err != nil {
		return err
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("endpoint URL must contain a hostname")
	}

	if isHostBlocked(hostname, opts.BlockedHosts) {
		return fmt.Errorf("hostname %q is blocked", hostname)
	}

	if len(opts.AllowedHosts) > 0 || len(opts.AllowedHostSuffixes) > 0 {
		if !isHostAllowed(hostname, opts.AllowedHosts, opts.AllowedHostSuffixes) {
			return fmt.Errorf("hostname %q is not in the allowed list", hostname)
		}
	}

	if opts.BlockPrivateIPs {
		if err := validateHostNotPrivate(hostname); err != nil {
			return err
		}
	}

	return nil
}

// validateScheme checks if the URL scheme is allowed
func validateScheme(scheme string, allowedSchemes []string) error {
	if len(allowedSchemes) == 0 {
		allowedSchemes = []string{"https", "http"}
	}

	scheme = strings.ToLower(scheme)
	for _, allowed := range allowedSchemes {
		if scheme == strings.ToLower(allowed) {
			return nil
		}
	}

	return fmt.Errorf("URL scheme %q is not allowed; permitted schemes: %v", scheme, allowedSchemes)
}

// validateHostNotPrivate resolves the hostname and checks for private IPs
func validateHostNotPrivate(hostname string) error {
	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname %q: %w", hostname, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("connection to private/internal IP %s is not allowed (hostname: %s)", ip, hostname)
		}
	}

	return nil
}

// isPrivateIP checks if an IP address is private, loopback, or otherwise internal
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	if ip.IsPrivate() || ip.IsUnspecified() {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		// Carrier-grade NAT (100.64.0.0/10)
		if ip4[0] == 100 && ip4[1] >= 64 && ip4[1] <= 127 {
			return true
		}
		// Current network (0.0.0.0/8)
		if ip4[0] == 0 {
			return true
		}
		// Multicast and reserved (224.0.0.0/4, 240.0.0.0/4)
		if ip4[0] >= 224 {
			return true
		}
	}

	return false
}

// isHostBlocked checks if a hostname is in the blocked list
func isHostBlocked(hostname string, blockedHosts []string) bool {
	hostname = strings.ToLower(hostname)
	for _, blocked := range blockedHosts {
		blocked = strings.ToLower(blocked)
		if hostname == blocked || strings.HasSuffix(hostname, "."+blocked) {
			return true
		}
	}
	return false
}

// isHostAllowed checks if a hostname matches allowed hosts or suffixes
func isHostAllowed(hostname string, allowedHosts, allowedSuffixes []string) bool {
	hostname = strings.ToLower(hostname)

	for _, allowed := range allowedHosts {
		if strings.ToLower(allowed) == hostname {
			return true
		}
	}

	for _, suffix := range allowedSuffixes {
		if strings.HasSuffix(hostname, strings.ToLower(suffix)) {
			return true
		}
	}

	return false
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// sqlReservedWords covers the reserved words shared by the SQL and CQL
// dialects the relational modules speak.
var sqlReservedWords = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER",
	"TABLE", "DATABASE", "KEYSPACE", "INDEX", "FROM", "WHERE", "AND", "OR",
	"NOT", "NULL", "TRUE", "FALSE", "JOIN", "ON", "AS", "ORDER", "BY",
	"GROUP", "HAVING", "UNION", "ALL", "DISTINCT", "LIMIT", "OFFSET",
	"INTO", "VALUES", "SET", "GRANT", "REVOKE", "TRUNCATE", "CASCADE",
}

// ValidateIdentifier checks that a string is safe to interpolate as a SQL
// or CQL identifier (table, keyspace, column). Module methods that accept
// identifiers from generated code must validate them before building
// statements; bind parameters cannot cover identifier positions.
func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if !identifierPattern.MatchString(identifier) {
		return fmt.Errorf("invalid identifier: %q", identifier)
	}

	upperIdentifier := strings.ToUpper(identifier)
	for _, word := range sqlReservedWords {
		if upperIdentifier == word {
			return fmt.Errorf("identifier %q is a reserved word", identifier)
		}
	}

	return nil
}

var ansiEscapePattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// SanitizeLogString escapes characters that could be used for log
// injection. Registry diagnostics include registration names and metadata
// supplied by module authors, so those strings are sanitized before they
// reach the log stream.
func SanitizeLogString(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = ansiEscapePattern.ReplaceAllString(s, "")
	const maxLogLength = 500
	if len(s) > maxLogLength {
		s = s[:maxLogLength] + "...[truncated]"
	}
	return s
}
