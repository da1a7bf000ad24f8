package domain

import (
	"strings"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	valid := []string{
		"acme",
		"my-awesome-store",
		"shop42",
		"a2c",
		"x-1-y-2",
	}
	for _, s := range valid {
		if v := ValidateSlug(s); !v.Valid {
			t.Errorf("ValidateSlug(%q) invalid: %s", s, v.Reason)
		}
	}

	invalid := []string{
		"",
		"ab",
		"Acme",
		"-acme",
		"acme-",
		"ac--me",
		"4cme",
		"acme_store",
		"acme.store",
		"api",
		"checkout",
		strings.Repeat("a", 64),
	}
	for _, s := range invalid {
		if v := ValidateSlug(s); v.Valid {
			t.Errorf("ValidateSlug(%q) = valid, want invalid", s)
		} else if v.Reason == "" {
			t.Errorf("ValidateSlug(%q) invalid without reason", s)
		}
	}
}

func TestGenerateSlugExamples(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"My Awesome Store!!", "my-awesome-store"},
		{"acme", "acme"},
		{"  Spaced   Out  ", "spaced-out"},
		{"snake_case_name", "snake-case-name"},
		{"42nd Street", "store-42nd-street"},
	}

	for _, tc := range cases {
		if got := GenerateSlug(tc.name); got != tc.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestGenerateSlugNeverReserved(t *testing.T) {
	for reserved := range reservedSlugs {
		got := GenerateSlug(reserved)
		if IsReservedSlug(got) {
			t.Errorf("GenerateSlug(%q) = %q, still reserved", reserved, got)
		}
		if !IsValidSlug(got) {
			t.Errorf("GenerateSlug(%q) = %q, fails validation", reserved, got)
		}
	}

	// Casing must not dodge the reserved check.
	if got := GenerateSlug("API"); got == "api" {
		t.Errorf("GenerateSlug(\"API\") returned reserved slug %q", got)
	}
}

func TestGenerateSlugAlwaysValid(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"\t\n",
		"!!!",
		"---",
		"___",
		"a",
		"ab",
		"世界商店",
		"crème brûlée",
		"-leading-hyphen",
		"trailing-hyphen-",
		"MiXeD CaSe NaMe",
		"a b c d e f",
		"1234567890",
		strings.Repeat("x", 200),
		strings.Repeat("x-", 100),
		strings.Repeat("very long name ", 40),
		"store", // reserved after transform
		"!@#$%^&*()",
	}

	for _, input := range inputs {
		got := GenerateSlug(input)
		if !IsValidSlug(got) {
			v := ValidateSlug(got)
			t.Errorf("GenerateSlug(%q) = %q, invalid: %s", input, got, v.Reason)
		}
	}
}

func TestGenerateSlugStableUnderReapplication(t *testing.T) {
	inputs := []string{"My Awesome Store!!", "API", "", "42 things", strings.Repeat("long ", 30)}

	for _, input := range inputs {
		first := GenerateSlug(input)
		second := GenerateSlug(first)
		if !IsValidSlug(second) {
			t.Errorf("GenerateSlug(GenerateSlug(%q)) = %q, invalid", input, second)
		}
	}
}

func TestGenerateSlugLength(t *testing.T) {
	got := GenerateSlug(strings.Repeat("abc ", 50))
	if len(got) > SlugMaxLength {
		t.Errorf("generated slug %q exceeds %d chars", got, SlugMaxLength)
	}
	if len(got) < SlugMinLength {
		t.Errorf("generated slug %q shorter than %d chars", got, SlugMinLength)
	}
}
