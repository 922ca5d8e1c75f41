package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCreateToken_RoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	token := CreateToken("admin", now.Add(time.Hour), testSecret)

	got, err := VerifyToken(token, testSecret, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "admin" {
		t.Errorf("expected subject admin, got %q", got)
	}
}

func TestVerifyToken_SubjectWithSeparator(t *testing.T) {
	now := time.Unix(1700000000, 0)
	token := CreateToken("a|b", now.Add(time.Minute), testSecret)

	got, err := VerifyToken(token, testSecret, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a|b" {
		t.Errorf("expected subject a|b, got %q", got)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	token := CreateToken("admin", now, testSecret)

	if _, err := VerifyToken(token, testSecret, now); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired at expiry instant, got %v", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	token := CreateToken("admin", now.Add(time.Hour), testSecret)

	other := SessionSecretBytes("another-secret-that-is-long-enough!!")
	if _, err := VerifyToken(token, other, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_TamperedPayload(t *testing.T) {
	now := time.Unix(1700000000, 0)
	token := CreateToken("admin", now.Add(time.Hour), testSecret)
	forged := CreateToken("root", now.Add(time.Hour), testSecret)

	mixed := strings.SplitN(forged, ".", 2)[0] + "." + strings.SplitN(token, ".", 2)[1]
	if _, err := VerifyToken(mixed, testSecret, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_Malformed(t *testing.T) {
	for _, tok := range []string{"", "abc", ".", "abc.", "!!!.def"} {
		if _, err := VerifyToken(tok, testSecret, time.Now()); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyToken(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestSessionSecretBytes_PadsShortSecret(t *testing.T) {
	b := SessionSecretBytes("short")
	if len(b) != 32 {
		t.Errorf("expected 32 bytes, got %d", len(b))
	}
	long := strings.Repeat("x", 40)
	if got := SessionSecretBytes(long); string(got) != long {
		t.Error("expected long secret to be returned unchanged")
	}
}
