package money

import "testing"

func TestAmount(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		1250:   "12.50",
		100000: "1000.00",
		-199:   "-1.99",
	}
	for cents, want := range cases {
		if got := Amount(cents); got != want {
			t.Fatalf("Amount(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(4200, "usd"); got != "42.00 USD" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatCents(4200, ""); got != "42.00" {
		t.Fatalf("unexpected %q", got)
	}
}
