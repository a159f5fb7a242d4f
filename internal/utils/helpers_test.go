package utils

import "testing"

func TestFoldUpper(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Côte d'Or", "COTE D'OR"},
		{"  vallée   du  Doubs ", "VALLEE DU DOUBS"},
		{"Bœuf", "BOEUF"},
		{"ÉTANG ROUGE", "ETANG ROUGE"},
		{"", ""},
	}
	for _, c := range cases {
		if got := FoldUpper(c.in); got != c.want {
			t.Errorf("FoldUpper(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDigitHelpers(t *testing.T) {
	if got := DigitsOnly("n° 12-b4"); got != "124" {
		t.Fatalf("DigitsOnly = %q", got)
	}
	if !IsDigits("0042") || IsDigits("") || IsDigits("4a") {
		t.Fatal("IsDigits mismatch")
	}
	if !HasDigit("AB3") || HasDigit("ABC") {
		t.Fatal("HasDigit mismatch")
	}
	if got := PadLeft("7", 3, '0'); got != "007" {
		t.Fatalf("PadLeft = %q", got)
	}
	if got := PadLeft("1234", 3, '0'); got != "1234" {
		t.Fatalf("PadLeft long = %q", got)
	}
	if got := FirstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("FirstNonEmpty = %q", got)
	}
}
