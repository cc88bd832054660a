package id

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzNewRefundRequestNo checks the provider length limit and the order prefix for arbitrary order ids.
func FuzzNewRefundRequestNo(f *testing.F) {
	seeds := []string{
		"ORD-1",
		"",
		"1024",
		"order_with_underscores",
		"中文订单",
		strings.Repeat("9", 64),
		strings.Repeat("a", 1000),
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, orderID string) {
		if !utf8.ValidString(orderID) {
			return
		}

		requestNo, err := NewRefundRequestNo(orderID)
		if err != nil {
			t.Fatalf("NewRefundRequestNo(%q) returned error: %v", orderID, err)
		}

		if len(requestNo) > MaxRequestNoLength {
			t.Errorf("NewRefundRequestNo(%q) = %q exceeds %d bytes", orderID, requestNo, MaxRequestNoLength)
		}

		if !utf8.ValidString(requestNo) {
			t.Errorf("NewRefundRequestNo(%q) = %q is not valid UTF-8", orderID, requestNo)
		}

		prefix := requestNo[:len(requestNo)-DefaultLength-1]
		if !strings.HasPrefix(orderID, prefix) {
			t.Errorf("NewRefundRequestNo(%q) = %q does not start with a prefix of the order id", orderID, requestNo)
		}
		if len(orderID) <= MaxRequestNoLength-DefaultLength-1 && prefix != orderID {
			t.Errorf("NewRefundRequestNo(%q) = %q shortened an order id that fits", orderID, requestNo)
		}
	})
}

func TestNewRefundRequestNo_FreshPerCall(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		requestNo, err := NewRefundRequestNo("ORD-1")
		if err != nil {
			t.Fatal(err)
		}
		if seen[requestNo] {
			t.Fatalf("duplicate refund request number %q", requestNo)
		}
		seen[requestNo] = true
	}
}

func TestNewRefundRequestNo_CutsAtRuneBoundary(t *testing.T) {
	// The 51-byte prefix budget ends inside the 17th three-byte rune.
	orderID := "A" + strings.Repeat("订", 18)

	requestNo, err := NewRefundRequestNo(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if !utf8.ValidString(requestNo) {
		t.Fatalf("refund request number %q is not valid UTF-8", requestNo)
	}
	if want := "A" + strings.Repeat("订", 16) + "_"; !strings.HasPrefix(requestNo, want) {
		t.Fatalf("expected prefix %q, got %q", want, requestNo)
	}
	if len(requestNo) > MaxRequestNoLength {
		t.Fatalf("refund request number %q exceeds %d bytes", requestNo, MaxRequestNoLength)
	}
}

func TestGenerate_Alphabet(t *testing.T) {
	got := MustGenerate(0)
	if len(got) != DefaultLength {
		t.Fatalf("expected length %d, got %d", DefaultLength, len(got))
	}
	for _, r := range got {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("unexpected rune %q in %q", r, got)
		}
	}
}
