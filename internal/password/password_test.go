package password

import "testing"

func TestHashVerifyRoundTrip(t *testing.T) {
	h := Bcrypt{Cost: 4} // minimum cost keeps the test fast

	digest, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !h.Verify("correct-horse", digest) {
		t.Fatalf("expected digest to verify against original password")
	}
	if h.Verify("battery-staple", digest) {
		t.Fatalf("expected digest to reject a different password")
	}
}

func TestDistinctPasswordsProduceDistinctDigests(t *testing.T) {
	h := Bcrypt{Cost: 4}

	first, err := h.Hash("password1")
	if err != nil {
		t.Fatalf("hash first: %v", err)
	}
	second, err := h.Hash("password2")
	if err != nil {
		t.Fatalf("hash second: %v", err)
	}

	if h.Verify("password1", second) || h.Verify("password2", first) {
		t.Fatalf("digests must not verify across distinct passwords")
	}
}
