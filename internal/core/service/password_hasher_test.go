package service

import "testing"

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatalf("hash equals plaintext")
	}

	if !h.Verify("correct horse battery staple", hash) {
		t.Fatalf("expected verify to succeed")
	}
	if h.Verify("wrong password", hash) {
		t.Fatalf("expected verify to fail for wrong password")
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(4)

	for _, bad := range []string{"", "not-a-bcrypt-hash", "$2a$garbage"} {
		if h.Verify("anything", bad) {
			t.Fatalf("malformed hash %q verified", bad)
		}
	}
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewPasswordHasher(4)

	a, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	b, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if a == b {
		t.Fatalf("expected salted hashes to differ")
	}
}
