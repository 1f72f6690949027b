package zipsync

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-zipcore/zipcore"
)

func TestStreamEntriesReadsInOrder(t *testing.T) {
	var b testZipBuilder
	b.addStored("first.txt", []byte("one"))
	b.addDeflated("second.txt", bytes.Repeat([]byte("two "), 100))
	raw := b.finish("")

	s := StreamEntries(bytes.NewReader(raw))

	meta, rc, err := s.Next()
	if err != nil {
		t.Fatalf("Next (1): %v", err)
	}
	if meta.Name != "first.txt" || meta.Method != zipcore.MethodStore {
		t.Fatalf("meta = %+v, want first.txt/Store", meta)
	}
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll (1): %v", err)
	}
	if string(got) != "one" {
		t.Fatalf("content (1) = %q, want %q", got, "one")
	}
	rc.Close()

	meta, rc, err = s.Next()
	if err != nil {
		t.Fatalf("Next (2): %v", err)
	}
	if meta.Name != "second.txt" || meta.Method != zipcore.MethodDeflate {
		t.Fatalf("meta = %+v, want second.txt/Deflate", meta)
	}
	got, err = io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll (2): %v", err)
	}
	if string(got) != string(bytes.Repeat([]byte("two "), 100)) {
		t.Fatalf("content (2) mismatch, got %d bytes", len(got))
	}
	rc.Close()

	if _, _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next (3) = %v, want io.EOF", err)
	}
}

func TestStreamEntriesSingleEntry(t *testing.T) {
	var b testZipBuilder
	b.addStored("only.txt", []byte("the only entry"))
	raw := b.finish("")

	s := StreamEntries(bytes.NewReader(raw))
	meta, rc, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if meta.Name != "only.txt" {
		t.Fatalf("name = %q, want only.txt", meta.Name)
	}
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "the only entry" {
		t.Fatalf("content = %q", got)
	}
	rc.Close()

	if _, _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next (2) = %v, want io.EOF", err)
	}
}

func TestStreamEntriesEmptyArchive(t *testing.T) {
	var b testZipBuilder
	raw := b.finish("")

	s := StreamEntries(bytes.NewReader(raw))
	if _, _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next = %v, want io.EOF", err)
	}
}
