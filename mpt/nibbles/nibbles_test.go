package nibbles

import (
	"bytes"
	"testing"
)

func TestEncodeDecodePathRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		path       Path
		terminator bool
	}{
		{"empty, leaf", Path{}, true},
		{"empty, extension", Path{}, false},
		{"even length, leaf", Path{1, 2, 3, 4}, true},
		{"even length, extension", Path{1, 2, 3, 4}, false},
		{"odd length, leaf", Path{1, 2, 3}, true},
		{"odd length, extension", Path{1, 2, 3}, false},
		{"single nibble, leaf", Path{0xf}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded := EncodePath(c.path, c.terminator)

			decoded, terminator, err := FromEncodedPath(encoded)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if terminator != c.terminator {
				t.Errorf("expected terminator %v, got %v", c.terminator, terminator)
			}
			if !decoded.Equal(c.path) {
				t.Errorf("expected path %v, got %v", c.path, decoded)
			}
		})
	}
}

func TestFromRawPath(t *testing.T) {
	raw := []byte{0x12, 0xab}
	got := FromRawPath(raw)
	want := Path{1, 2, 0xa, 0xb}
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !bytes.Equal(got.Raw(), raw) {
		t.Errorf("Raw() did not round-trip: got %x, want %x", got.Raw(), raw)
	}
}

func TestIntersect(t *testing.T) {
	a := Path{1, 2, 3, 4, 5}
	b := Path{1, 2, 3, 9, 9}

	got := a.Intersect(b)
	want := Path{1, 2, 3}
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if !Path{}.Intersect(Path{1}).Equal(Path{}) {
		t.Error("expected empty intersection when paths diverge immediately")
	}
}

func TestSlice(t *testing.T) {
	p := Path{1, 2, 3, 4}

	rest, err := p.Slice(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rest.Equal(Path{3, 4}) {
		t.Errorf("expected %v, got %v", Path{3, 4}, rest)
	}

	if _, err := p.Slice(5); err == nil {
		t.Error("expected error slicing past the end of the path")
	}
}

func TestFirstNibble(t *testing.T) {
	if _, err := (Path{}).FirstNibble(); err == nil {
		t.Error("expected error on empty path")
	}

	n, err := (Path{7, 8}).FirstNibble()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
}

func TestConcat(t *testing.T) {
	a := Path{1, 2}
	b := Path{3, 4}
	got := a.Concat(b)
	if !got.Equal(Path{1, 2, 3, 4}) {
		t.Errorf("expected %v, got %v", Path{1, 2, 3, 4}, got)
	}
}
