package membuf

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestU_NewReader(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{"[Unit] Reader: byte slice", []byte("abc"), "abc", false},
		{"[Unit] Reader: string", "abc", "abc", false},
		{"[Unit] Reader: empty slice", []byte{}, "", false},
		{"[Unit] Reader: bytes.Buffer", bytes.NewBufferString("abc"), "abc", false},
		{"[Unit] Reader: io.Reader", strings.NewReader("abc"), "abc", false},
		{"[Unit] Reader: nil", nil, "", true},
		{"[Unit] Reader: nil buffer", (*bytes.Buffer)(nil), "", true},
		{"[Unit] Reader: int", 42, "", true},
		{"[Unit] Reader: struct", struct{}{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewReader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if string(r.Bytes()) != tt.want {
				t.Errorf("Bytes() = %q, want %q", r.Bytes(), tt.want)
			}
			if r.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.want))
			}
		})
	}
}

// The reader borrows; it must expose the caller's bytes, not a copy.
func TestU_Reader_BorrowsCallerBytes(t *testing.T) {
	src := []byte("abc")
	r, err := NewReader(src)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	src[0] = 'x'
	if r.Bytes()[0] != 'x' {
		t.Error("Reader copied the input instead of borrowing it")
	}
}

// The writer copies out; mutating its result must not affect later reads.
func TestU_Writer_CopiesOut(t *testing.T) {
	var w Writer
	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	first := w.Bytes()
	first[0] = 'x'

	second := w.Bytes()
	if string(second) != "abc" {
		t.Errorf("Writer output aliased: got %q, want %q", second, "abc")
	}
}
