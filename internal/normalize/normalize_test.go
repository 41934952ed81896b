package normalize

import "testing"

func TestStringFoldsDiacriticsAndCase(t *testing.T) {
	cases := map[string]string{
		"Báo cáo tài chính.pdf": "bao cao tai chinhpdf",
		"ĐƯỜNG Đi":               "duong di",
		"  multiple   spaces  ": "multiple spaces",
		"Already Normal":         "already normal",
	}
	for in, want := range cases {
		got := String(in)
		if got != want {
			t.Fatalf("String(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStringIsIdempotent(t *testing.T) {
	inputs := []string{"Báo cáo tài chính.pdf", "hello world", "ĐÊM   trăng"}
	for _, in := range inputs {
		once := String(in)
		twice := String(once)
		if once != twice {
			t.Fatalf("String not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestContainsAllTokensEmptyMatchesEverything(t *testing.T) {
	if !ContainsAllTokens("anything at all", nil) {
		t.Fatal("empty token set should match everything")
	}
	if !ContainsAllTokens("", []string{}) {
		t.Fatal("empty token set should match even an empty haystack")
	}
}

func TestContainsAllTokensMonotoneUnderMoreTokens(t *testing.T) {
	haystack := "alpha beta gamma"
	if !ContainsAllTokens(haystack, []string{"alpha"}) {
		t.Fatal("single present token should match")
	}
	if !ContainsAllTokens(haystack, []string{"alpha", "beta"}) {
		t.Fatal("both present tokens should match")
	}
	if ContainsAllTokens(haystack, []string{"alpha", "beta", "delta"}) {
		t.Fatal("adding an absent token should remove the match")
	}
}

func TestTokensSplitsOnWhitespace(t *testing.T) {
	got := Tokens(String("  Alpha   Beta "))
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("Tokens = %v", got)
	}
}
