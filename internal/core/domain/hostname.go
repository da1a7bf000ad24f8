package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// HostKind discriminates the possible classifications of an inbound Host header.
type HostKind string

const (
	// HostKindPlatform means the request targets the bare platform domain itself.
	HostKindPlatform HostKind = "platform"
	// HostKindTenantSubdomain means the request targets <slug>.<platform domain>.
	HostKindTenantSubdomain HostKind = "tenant_subdomain"
	// HostKindCustomDomain means the request targets a well-formed domain outside the platform.
	HostKindCustomDomain HostKind = "custom_domain"
	// HostKindInvalid means the Host header is malformed and must be rejected.
	HostKindInvalid HostKind = "invalid"
)

// HostClassification is the result of resolving a raw Host header.
// Exactly one of Slug / Host carries data depending on Kind.
type HostClassification struct {
	Kind   HostKind
	Slug   string // set when Kind == HostKindTenantSubdomain
	Host   string // normalized host, set when Kind == HostKindCustomDomain
	Reason string // set when Kind == HostKindInvalid
}

// IsTenant reports whether the classification resolves to a tenant subdomain.
func (hc HostClassification) IsTenant() bool {
	return hc.Kind == HostKindTenantSubdomain
}

// localPlatformHosts are always treated as the platform itself, with or
// without their port suffix, so local development behaves like production.
var localPlatformHosts = map[string]struct{}{
	"localhost":      {},
	"localhost:3000": {},
	"127.0.0.1":      {},
	"127.0.0.1:3000": {},
}

// ClassifyHost resolves a raw Host header against the platform root domain.
// It is the single gate between attacker-controlled Host values and tenant
// routing: anything that is not provably the platform, a direct tenant
// subdomain, or a well-formed external domain comes back invalid.
func ClassifyHost(hostname, platformDomain string) HostClassification {
	normalized := strings.ToLower(strings.TrimSpace(hostname))
	if normalized == "" {
		return HostClassification{Kind: HostKindInvalid, Reason: "empty host"}
	}

	platform := strings.ToLower(strings.TrimSpace(platformDomain))
	bare := stripPort(normalized)

	if _, ok := localPlatformHosts[normalized]; ok {
		return HostClassification{Kind: HostKindPlatform}
	}
	if _, ok := localPlatformHosts[bare]; ok {
		return HostClassification{Kind: HostKindPlatform}
	}

	if platform != "" {
		if bare == platform || bare == "www."+platform {
			return HostClassification{Kind: HostKindPlatform}
		}

		if label, ok := strings.CutSuffix(bare, "."+platform); ok {
			// A nested subdomain never maps to a tenant; it falls through to
			// custom-domain validation instead.
			if label != "" && label != "www" && !strings.Contains(label, ".") {
				return HostClassification{Kind: HostKindTenantSubdomain, Slug: label}
			}
		}
	}

	if err := ValidateHostname(normalized); err != nil {
		return HostClassification{Kind: HostKindInvalid, Reason: err.Error()}
	}

	return HostClassification{Kind: HostKindCustomDomain, Host: bare}
}

// IsValidHostname reports whether the input is a syntactically safe hostname,
// optionally carrying a :port suffix.
func IsValidHostname(hostname string) bool {
	return ValidateHostname(hostname) == nil
}

// ValidateHostname checks hostname well-formedness and returns the first
// violation found. The rules are deliberately strict: this is the defense
// against Host-header injection reaching logs, caches, or redirects.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("hostname is empty")
	}

	host := hostname
	if idx := strings.LastIndexByte(hostname, ':'); idx >= 0 {
		if err := validatePort(hostname[idx+1:]); err != nil {
			return err
		}
		host = hostname[:idx]
	}

	if host == "" {
		return fmt.Errorf("hostname has no host portion")
	}
	if len(host) > 253 {
		return fmt.Errorf("hostname exceeds 253 characters")
	}

	if host == "localhost" {
		return nil
	}

	// Anything shaped like a dotted quad is held to IPv4 rules; "256.1.1.1"
	// must not slip through as a syntactically fine DNS name.
	if looksLikeIPv4(host) {
		if !isIPv4(host) {
			return fmt.Errorf("%q is not a valid IPv4 address", host)
		}
		return nil
	}

	for _, label := range strings.Split(host, ".") {
		if err := validateDNSLabel(label); err != nil {
			return err
		}
	}

	return nil
}

func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port is empty")
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port %q is not numeric", port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port %d out of range", n)
	}
	// Reject non-canonical forms such as leading zeros or a plus sign.
	if strconv.Itoa(n) != port {
		return fmt.Errorf("port %q is not canonical", port)
	}
	return nil
}

func validateDNSLabel(label string) error {
	if label == "" {
		return fmt.Errorf("hostname contains an empty label")
	}
	if len(label) > 63 {
		return fmt.Errorf("label %q exceeds 63 characters", label)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return fmt.Errorf("label %q has a leading or trailing hyphen", label)
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' {
			continue
		}
		return fmt.Errorf("label %q contains invalid character %q", label, c)
	}
	return nil
}

func looksLikeIPv4(host string) bool {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return false
			}
		}
	}
	return true
}

func isIPv4(host string) bool {
	octets := strings.Split(host, ".")
	if len(octets) != 4 {
		return false
	}
	for _, octet := range octets {
		if octet == "" || len(octet) > 3 {
			return false
		}
		n, err := strconv.Atoi(octet)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

func stripPort(host string) string {
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 {
		return host[:idx]
	}
	return host
}
