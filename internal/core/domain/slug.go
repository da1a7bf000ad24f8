package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// SlugMinLength is the shortest slug accepted for a tenant.
	SlugMinLength = 3
	// SlugMaxLength matches the DNS label limit since slugs become subdomains.
	SlugMaxLength = 63
)

// slugPattern is the canonical slug grammar: starts with a letter, lowercase
// alphanumeric groups separated by single hyphens, no trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// reservedSlugs are labels a tenant may never claim: platform routes,
// infrastructure subdomains, and auth/billing/legal terms.
var reservedSlugs = map[string]struct{}{
	"www": {}, "api": {}, "app": {}, "admin": {}, "dashboard": {},
	"assets": {}, "static": {}, "cdn": {}, "img": {}, "media": {},
	"mail": {}, "smtp": {}, "imap": {}, "ftp": {}, "ns1": {}, "ns2": {},
	"auth": {}, "login": {}, "logout": {}, "signup": {}, "signin": {},
	"account": {}, "accounts": {}, "billing": {}, "payments": {},
	"checkout": {}, "cart": {}, "store": {}, "shop": {}, "storefront": {},
	"docs": {}, "help": {}, "support": {}, "status": {}, "blog": {},
	"about": {}, "pricing": {}, "legal": {}, "terms": {}, "privacy": {},
	"security": {}, "abuse": {}, "root": {}, "system": {}, "internal": {},
	"staging": {}, "test": {}, "dev": {}, "demo": {}, "preview": {},
	"editor": {}, "settings": {}, "webhooks": {}, "metrics": {},
}

// SlugValidation carries the outcome of validating a user-supplied slug.
// It backs interactive form validation, so failures are values, not errors.
type SlugValidation struct {
	Valid  bool
	Reason string
}

// IsValidSlug reports whether s satisfies the full slug contract.
func IsValidSlug(s string) bool {
	return ValidateSlug(s).Valid
}

// ValidateSlug checks s against the slug contract and explains the first
// violation in a form suitable for inline field errors.
func ValidateSlug(s string) SlugValidation {
	switch {
	case len(s) < SlugMinLength:
		return SlugValidation{Reason: fmt.Sprintf("slug must be at least %d characters", SlugMinLength)}
	case len(s) > SlugMaxLength:
		return SlugValidation{Reason: fmt.Sprintf("slug must be at most %d characters", SlugMaxLength)}
	case s != strings.ToLower(s):
		return SlugValidation{Reason: "slug must be lowercase"}
	case !slugPattern.MatchString(s):
		return SlugValidation{Reason: "slug must start with a letter and contain only letters, digits, and single hyphens"}
	case IsReservedSlug(s):
		return SlugValidation{Reason: fmt.Sprintf("slug %q is reserved", s)}
	}
	return SlugValidation{Valid: true}
}

// IsReservedSlug reports whether s belongs to the fixed reserved-word set.
func IsReservedSlug(s string) bool {
	_, ok := reservedSlugs[strings.ToLower(s)]
	return ok
}

var (
	whitespaceRuns = regexp.MustCompile(`[\s_]+`)
	disallowedRune = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRuns     = regexp.MustCompile(`-{2,}`)
)

// GenerateSlug derives a valid tenant slug from an arbitrary display name.
// It is total: every input, including empty or all-symbol names, yields a
// slug that passes IsValidSlug.
func GenerateSlug(name string) string {
	s := strings.ToLower(name)
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = disallowedRune.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" || s[0] < 'a' || s[0] > 'z' {
		s = strings.TrimLeft("store-"+s, "-")
		s = strings.TrimRight(s, "-")
	}

	s = truncateSlug(s, SlugMaxLength)

	for len(s) < SlugMinLength {
		s += "0"
	}

	if IsReservedSlug(s) {
		s = truncateSlug(s+"-store", SlugMaxLength)
	}

	return s
}

func truncateSlug(s string, limit int) string {
	if len(s) > limit {
		s = s[:limit]
	}
	return strings.TrimRight(s, "-")
}
