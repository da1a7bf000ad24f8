package domain

import "testing"

func TestClassifyHostPlatform(t *testing.T) {
	cases := []string{
		"indigo.com",
		"INDIGO.COM",
		"www.indigo.com",
		"indigo.com:3000",
		"www.indigo.com:8443",
		"localhost",
		"localhost:3000",
		"127.0.0.1",
		"127.0.0.1:3000",
	}

	for _, host := range cases {
		got := ClassifyHost(host, "indigo.com")
		if got.Kind != HostKindPlatform {
			t.Errorf("ClassifyHost(%q) = %v, want platform", host, got.Kind)
		}
	}
}

func TestClassifyHostTenantSubdomain(t *testing.T) {
	cases := []struct {
		host string
		slug string
	}{
		{"acme.indigo.com", "acme"},
		{"acme.indigo.com:3000", "acme"},
		{"ACME.Indigo.Com", "acme"},
		{"shop-42.indigo.com", "shop-42"},
	}

	for _, tc := range cases {
		got := ClassifyHost(tc.host, "indigo.com")
		if got.Kind != HostKindTenantSubdomain {
			t.Errorf("ClassifyHost(%q) = %v, want tenant subdomain", tc.host, got.Kind)
			continue
		}
		if got.Slug != tc.slug {
			t.Errorf("ClassifyHost(%q).Slug = %q, want %q", tc.host, got.Slug, tc.slug)
		}
	}
}

func TestClassifyHostNestedSubdomainIsNotTenant(t *testing.T) {
	got := ClassifyHost("a.b.indigo.com", "indigo.com")
	if got.Kind == HostKindTenantSubdomain {
		t.Fatalf("nested subdomain classified as tenant: %+v", got)
	}
}

func TestClassifyHostWWWSubdomainIsNotTenant(t *testing.T) {
	got := ClassifyHost("www.indigo.com", "indigo.com")
	if got.Kind != HostKindPlatform {
		t.Fatalf("ClassifyHost(www) = %v, want platform", got.Kind)
	}
}

func TestClassifyHostCustomDomain(t *testing.T) {
	cases := []string{
		"shop-x.example.org",
		"example.org",
		"my-store.co.uk",
		"shop.example.org:8080",
	}

	for _, host := range cases {
		got := ClassifyHost(host, "indigo.com")
		if got.Kind != HostKindCustomDomain {
			t.Errorf("ClassifyHost(%q) = %v, want custom domain", host, got.Kind)
		}
	}
}

func TestClassifyHostInvalid(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"exa mple.org",
		"example..org",
		"-bad.example.org",
		"bad-.example.org",
		"example.org:0",
		"example.org:70000",
		"example.org:08080",
		"example.org:",
		"bad_label.example.org",
	}

	for _, host := range cases {
		got := ClassifyHost(host, "indigo.com")
		if got.Kind != HostKindInvalid {
			t.Errorf("ClassifyHost(%q) = %v, want invalid", host, got.Kind)
		}
		if got.Kind == HostKindInvalid && got.Reason == "" && host != "" {
			t.Errorf("ClassifyHost(%q) invalid without reason", host)
		}
	}
}

func TestClassifyHostAlwaysOneVariant(t *testing.T) {
	hosts := []string{
		"", "indigo.com", "acme.indigo.com", "a.b.indigo.com", "www.indigo.com",
		"example.org", "..", "localhost", "localhost:99999", "127.0.0.1",
		"256.1.1.1", "acme.indigo.com:443", "x.indigo.com", "-x.indigo.com",
	}

	for _, host := range hosts {
		got := ClassifyHost(host, "indigo.com")
		switch got.Kind {
		case HostKindPlatform, HostKindTenantSubdomain, HostKindCustomDomain, HostKindInvalid:
		default:
			t.Fatalf("ClassifyHost(%q) returned unknown kind %q", host, got.Kind)
		}

		if got.Kind == HostKindTenantSubdomain {
			slug := got.Slug
			if slug == "" || slug == "www" {
				t.Errorf("ClassifyHost(%q) returned disallowed slug %q", host, slug)
			}
			for i := 0; i < len(slug); i++ {
				if slug[i] == '.' {
					t.Errorf("ClassifyHost(%q) returned dotted slug %q", host, slug)
				}
			}
		}
	}
}

func TestIsValidHostname(t *testing.T) {
	valid := []string{
		"localhost",
		"localhost:8080",
		"example.org",
		"sub.example.org:443",
		"192.168.0.1",
		"10.0.0.1:5432",
		"a.io",
	}
	for _, host := range valid {
		if !IsValidHostname(host) {
			t.Errorf("IsValidHostname(%q) = false, want true", host)
		}
	}

	invalid := []string{
		"",
		":8080",
		"example.org:",
		"example.org:abc",
		"example.org:0",
		"example.org:65536",
		"example.org:0443",
		"256.0.0.1.",
		"ex!ample.org",
		"a..b",
	}
	for _, host := range invalid {
		if IsValidHostname(host) {
			t.Errorf("IsValidHostname(%q) = true, want false", host)
		}
	}
}

func TestIsValidHostnameLengthLimit(t *testing.T) {
	label := make([]byte, 63)
	for i := range label {
		label[i] = 'a'
	}

	long := ""
	for len(long) < 254 {
		long += string(label) + "."
	}
	long = long[:254]

	if IsValidHostname(long) {
		t.Fatalf("hostname longer than 253 chars accepted")
	}
}

func TestIPv4OctetRange(t *testing.T) {
	if IsValidHostname("256.1.1.1") {
		t.Error("octet above 255 accepted")
	}
	if !IsValidHostname("255.255.255.255") {
		t.Error("valid dotted quad rejected")
	}
}
