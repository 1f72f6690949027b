package fsm

import (
	"bytes"
	"compress/flate"
	"hash/crc32"
	"testing"

	"github.com/go-zipcore/zipcore"
)

func TestEntryFSMStoreRoundTrip(t *testing.T) {
	plain := []byte("hello, stored entry!")
	crc := crc32.ChecksumIEEE(plain)
	data := buildLocalHeader("store.txt", 0, plain, plain, crc)

	entry := &zipcore.Entry{
		Method:           zipcore.MethodStore,
		CRC32:            crc,
		CompressedSize:   uint64(len(plain)),
		UncompressedSize: uint64(len(plain)),
		HeaderOffset:     0,
	}
	f := NewEntryFSM(entry)
	out, err := driveEntryFSM(t, data, f, 1<<20)
	if err != nil {
		t.Fatalf("driveEntryFSM: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("output = %q, want %q", out, plain)
	}
}

func TestEntryFSMDeflateRoundTrip(t *testing.T) {
	plain := []byte("the quick brown fox jumps over the lazy dog, the quick brown fox jumps over the lazy dog")
	var deflated bytes.Buffer
	w, _ := flate.NewWriter(&deflated, flate.DefaultCompression)
	w.Write(plain)
	w.Close()
	crc := crc32.ChecksumIEEE(plain)
	data := buildLocalHeader("deflate.txt", 8, deflated.Bytes(), plain, crc)

	entry := &zipcore.Entry{
		Method:           zipcore.MethodDeflate,
		CRC32:            crc,
		CompressedSize:   uint64(deflated.Len()),
		UncompressedSize: uint64(len(plain)),
		HeaderOffset:     0,
	}
	f := NewEntryFSM(entry)
	out, err := driveEntryFSM(t, data, f, 1<<20)
	if err != nil {
		t.Fatalf("driveEntryFSM: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("output mismatch: got %d bytes, want %d bytes", len(out), len(plain))
	}
}

func TestEntryFSMDeflateByteAtATimeFeeding(t *testing.T) {
	plain := []byte("feeding this entry one byte at a time exercises the shift/request loop")
	var deflated bytes.Buffer
	w, _ := flate.NewWriter(&deflated, flate.DefaultCompression)
	w.Write(plain)
	w.Close()
	crc := crc32.ChecksumIEEE(plain)
	data := buildLocalHeader("slow.txt", 8, deflated.Bytes(), plain, crc)

	entry := &zipcore.Entry{
		Method:           zipcore.MethodDeflate,
		CRC32:            crc,
		CompressedSize:   uint64(deflated.Len()),
		UncompressedSize: uint64(len(plain)),
		HeaderOffset:     0,
	}
	f := NewEntryFSM(entry)
	out, err := driveEntryFSM(t, data, f, 1)
	if err != nil {
		t.Fatalf("driveEntryFSM: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("output mismatch: got %d bytes, want %d bytes", len(out), len(plain))
	}
}

func TestEntryFSMByteAtATimeFeeding(t *testing.T) {
	plain := []byte("short")
	crc := crc32.ChecksumIEEE(plain)
	data := buildLocalHeader("a.txt", 0, plain, plain, crc)

	entry := &zipcore.Entry{
		Method:           zipcore.MethodStore,
		CRC32:            crc,
		CompressedSize:   uint64(len(plain)),
		UncompressedSize: uint64(len(plain)),
		HeaderOffset:     0,
	}
	f := NewEntryFSM(entry)
	out, err := driveEntryFSM(t, data, f, 1)
	if err != nil {
		t.Fatalf("driveEntryFSM: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("output = %q, want %q", out, plain)
	}
}

func TestEntryFSMWrongChecksumFails(t *testing.T) {
	plain := []byte("data that will be corrupted")
	realCRC := crc32.ChecksumIEEE(plain)
	data := buildLocalHeader("bad.txt", 0, plain, plain, realCRC)

	entry := &zipcore.Entry{
		Method:           zipcore.MethodStore,
		CRC32:            realCRC ^ 0xffffffff, // deliberately wrong
		CompressedSize:   uint64(len(plain)),
		UncompressedSize: uint64(len(plain)),
		HeaderOffset:     0,
	}
	f := NewEntryFSM(entry)
	_, err := driveEntryFSM(t, data, f, 1<<20)
	if err == nil {
		t.Fatal("expected a checksum error, got nil")
	}
	if _, ok := err.(*zipcore.WrongChecksumError); !ok {
		t.Fatalf("expected *zipcore.WrongChecksumError, got %T: %v", err, err)
	}
}

func TestEntryFSMWrongSizeFails(t *testing.T) {
	plain := []byte("data of a certain length")
	crc := crc32.ChecksumIEEE(plain)
	data := buildLocalHeader("size.txt", 0, plain, plain, crc)

	entry := &zipcore.Entry{
		Method:           zipcore.MethodStore,
		CRC32:            crc,
		CompressedSize:   uint64(len(plain)),
		UncompressedSize: uint64(len(plain)) + 5, // deliberately wrong
		HeaderOffset:     0,
	}
	f := NewEntryFSM(entry)
	_, err := driveEntryFSM(t, data, f, 1<<20)
	if err == nil {
		t.Fatal("expected a size error, got nil")
	}
	if _, ok := err.(*zipcore.WrongSizeError); !ok {
		t.Fatalf("expected *zipcore.WrongSizeError, got %T: %v", err, err)
	}
}

func TestEntryFSMStreamingModeUsesLocalHeaderSizes(t *testing.T) {
	plain := []byte("streaming discovery entry")
	crc := crc32.ChecksumIEEE(plain)
	data := buildLocalHeader("stream.txt", 0, plain, plain, crc)

	f := NewStreamingEntryFSM(0)
	out, err := driveEntryFSM(t, data, f, 1<<20)
	if err != nil {
		t.Fatalf("driveEntryFSM: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("output = %q, want %q", out, plain)
	}
}
