package common

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 32 {
		t.Fatalf("16 random bytes must encode to 32 hex chars, got %d", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("not valid hex: %v", err)
	}

	other, err := MakeRandHexString(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == other {
		t.Fatalf("two random strings came out identical: %q", s)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "" {
		t.Fatalf("size 0 must yield an empty string, got %q", s)
	}
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("hunter2")
	WipeByteArray(buf)
	if !bytes.Equal(buf, make([]byte, len(buf))) {
		t.Fatalf("buffer not zeroed: %v", buf)
	}

	WipeByteArray(nil) // must not panic

	empty := []byte{}
	WipeByteArray(empty)
	if len(empty) != 0 {
		t.Fatalf("length changed: %d", len(empty))
	}
}
