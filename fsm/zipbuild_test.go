package fsm

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/go-zipcore/zipcore"
)

// zipBuilder assembles a raw classic ZIP archive byte-by-byte, the way a
// real writer would lay one out, so the AFSM and EFSM can be tested against
// bytes that never pass through archive/zip (the format being
// reimplemented here). The upstream test fixtures this package's
// scenarios are modeled on (zip64.zip, test.zip, cp-437.zip, shift-jis.zip)
// aren't vendored into this repository, so this builder stands in for them.
type zipBuilder struct {
	buf     bytes.Buffer
	central bytes.Buffer
	entries int
}

func (z *zipBuilder) le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func (z *zipBuilder) le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// addStored writes a stored (method 0) local header plus data, and queues
// the matching central directory record.
func (z *zipBuilder) addStored(name string, data []byte) {
	z.add(name, 0, data, data)
}

// addDeflated deflates plain, writes a method-8 local header plus the
// deflated bytes, and queues the matching central directory record.
func (z *zipBuilder) addDeflated(name string, plain []byte) {
	var out bytes.Buffer
	w, _ := flate.NewWriter(&out, flate.DefaultCompression)
	w.Write(plain)
	w.Close()
	z.add(name, 8, out.Bytes(), plain)
}

func (z *zipBuilder) add(name string, method uint16, wireData, plain []byte) {
	crc := crc32.ChecksumIEEE(plain)
	off := uint32(z.buf.Len())

	z.buf.WriteString("PK\x03\x04")
	z.buf.Write(z.le16(20))
	z.buf.Write(z.le16(0))
	z.buf.Write(z.le16(method))
	z.buf.Write(z.le16(0))
	z.buf.Write(z.le16(0x21))
	z.buf.Write(z.le32(crc))
	z.buf.Write(z.le32(uint32(len(wireData))))
	z.buf.Write(z.le32(uint32(len(plain))))
	z.buf.Write(z.le16(uint16(len(name))))
	z.buf.Write(z.le16(0))
	z.buf.WriteString(name)
	z.buf.Write(wireData)

	z.central.WriteString("PK\x01\x02")
	z.central.Write(z.le16(0x0314))
	z.central.Write(z.le16(20))
	z.central.Write(z.le16(0))
	z.central.Write(z.le16(method))
	z.central.Write(z.le16(0))
	z.central.Write(z.le16(0x21))
	z.central.Write(z.le32(crc))
	z.central.Write(z.le32(uint32(len(wireData))))
	z.central.Write(z.le32(uint32(len(plain))))
	z.central.Write(z.le16(uint16(len(name))))
	z.central.Write(z.le16(0))
	z.central.Write(z.le16(0))
	z.central.Write(z.le16(0))
	z.central.Write(z.le16(0))
	z.central.Write(z.le32(0))
	z.central.Write(z.le32(off))
	z.central.WriteString(name)

	z.entries++
}

// finish appends the central directory and EOCD, returning the full archive.
func (z *zipBuilder) finish(comment string) []byte {
	centralStart := uint32(z.buf.Len())
	z.buf.Write(z.central.Bytes())
	centralSize := uint32(z.buf.Len()) - centralStart

	z.buf.WriteString("PK\x05\x06")
	z.buf.Write(z.le16(0))
	z.buf.Write(z.le16(0))
	z.buf.Write(z.le16(uint16(z.entries)))
	z.buf.Write(z.le16(uint16(z.entries)))
	z.buf.Write(z.le32(centralSize))
	z.buf.Write(z.le32(centralStart))
	z.buf.Write(z.le16(uint16(len(comment))))
	z.buf.WriteString(comment)

	return z.buf.Bytes()
}

// buildLocalHeader writes a single local header plus its wire data,
// standalone (no central directory), for EFSM tests that don't need a
// full archive.
func buildLocalHeader(name string, method uint16, wireData, plain []byte, crc uint32) []byte {
	var buf bytes.Buffer
	le16 := func(v uint16) { binary.Write(&buf, binary.LittleEndian, v) }
	le32 := func(v uint32) { binary.Write(&buf, binary.LittleEndian, v) }

	buf.WriteString("PK\x03\x04")
	le16(20)
	le16(0)
	le16(method)
	le16(0)
	le16(0x21)
	le32(crc)
	le32(uint32(len(wireData)))
	le32(uint32(len(plain)))
	le16(uint16(len(name)))
	le16(0)
	buf.WriteString(name)
	buf.Write(wireData)
	return buf.Bytes()
}

// driveArchiveFSM feeds the AFSM from archive in chunks of at most
// maxChunk bytes per Fill, so both big-read and byte-at-a-time feeding
// paths are exercised by the same helper.
func driveArchiveFSM(t *testing.T, archive []byte, a *ArchiveFSM, maxChunk int) (*zipcore.Archive, error) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		req, result, err := a.Process()
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		if req == nil {
			t.Fatal("Process returned no request, no result, no error")
		}
		n := req.MaxBytes
		if n > maxChunk {
			n = maxChunk
		}
		end := req.Offset + int64(n)
		if end > int64(len(archive)) {
			end = int64(len(archive))
		}
		n = int(end - req.Offset)
		if n <= 0 {
			t.Fatalf("request %+v exceeds archive length %d", *req, len(archive))
		}
		space := a.Space()
		if n > len(space) {
			n = len(space)
		}
		copy(space[:n], archive[req.Offset:req.Offset+int64(n)])
		a.Fill(n)
	}
	t.Fatal("ArchiveFSM did not converge")
	return nil, nil
}

// driveEntryFSM runs an EFSM to completion (or error), feeding bytes from
// data in chunks of at most maxChunk, and returns the concatenated
// decompressed output.
func driveEntryFSM(t *testing.T, data []byte, f *EntryFSM, maxChunk int) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	scratch := make([]byte, 4096)
	for i := 0; i < 10000; i++ {
		written, req, done, err := f.Process(scratch)
		if written > 0 {
			out.Write(scratch[:written])
		}
		if err != nil {
			return out.Bytes(), err
		}
		if done {
			return out.Bytes(), nil
		}
		if req == nil {
			t.Fatal("Process returned no request, not done, no error")
		}
		n := req.MaxBytes
		if n > maxChunk {
			n = maxChunk
		}
		end := req.Offset + int64(n)
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		n = int(end - req.Offset)
		if n <= 0 {
			t.Fatalf("request %+v exceeds input length %d", *req, len(data))
		}
		space := f.Space()
		if n > len(space) {
			n = len(space)
		}
		copy(space[:n], data[req.Offset:req.Offset+int64(n)])
		f.Fill(n)
	}
	t.Fatal("EntryFSM did not converge")
	return nil, nil
}
