package banklink

import (
	"errors"
	"testing"
)

func TestShareableID_Roundtrip(t *testing.T) {
	tests := []struct {
		name      string
		accountID string
	}{
		{"simple", "a1"},
		{"realistic", "BxBXxLj1zFuyy4qVg7lwMaKVgRvZPLqV4Bw9m"},
		{"with separators", "acct-00_99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeShareableID(tt.accountID)
			if err != nil {
				t.Fatalf("EncodeShareableID() failed: %v", err)
			}
			if encoded == tt.accountID {
				t.Error("EncodeShareableID() returned the input unchanged")
			}

			decoded, err := DecodeShareableID(encoded)
			if err != nil {
				t.Fatalf("DecodeShareableID() failed: %v", err)
			}
			if decoded != tt.accountID {
				t.Errorf("DecodeShareableID() = %q, want %q", decoded, tt.accountID)
			}
		})
	}
}

func TestShareableID_Deterministic(t *testing.T) {
	first, err := EncodeShareableID("a1")
	if err != nil {
		t.Fatalf("EncodeShareableID() failed: %v", err)
	}
	second, err := EncodeShareableID("a1")
	if err != nil {
		t.Fatalf("EncodeShareableID() failed: %v", err)
	}
	if first != second {
		t.Errorf("encoding is not deterministic: %q vs %q", first, second)
	}
}

func TestEncodeShareableID_Empty(t *testing.T) {
	_, err := EncodeShareableID("")
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("EncodeShareableID(\"\") error = %v, want ErrEncoding", err)
	}
}

func TestDecodeShareableID_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeShareableID(tt.input)
			if !errors.Is(err, ErrEncoding) {
				t.Errorf("DecodeShareableID(%q) error = %v, want ErrEncoding", tt.input, err)
			}
		})
	}
}
