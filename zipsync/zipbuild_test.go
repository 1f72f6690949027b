package zipsync

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"hash/crc32"
)

// testZipBuilder assembles a minimal, valid zip archive byte-for-byte, the
// same way fsm's own test builder does, so these tests don't depend on
// archive/zip either.
type testZipBuilder struct {
	buf     bytes.Buffer
	central bytes.Buffer
	entries int
}

func le16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func le32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }

func (b *testZipBuilder) addStored(name string, data []byte) {
	b.add(name, 0, data, data)
}

func (b *testZipBuilder) addDeflated(name string, plain []byte) {
	var wire bytes.Buffer
	w, _ := flate.NewWriter(&wire, flate.DefaultCompression)
	w.Write(plain)
	w.Close()
	b.add(name, 8, wire.Bytes(), plain)
}

func (b *testZipBuilder) add(name string, method uint16, wireData, plain []byte) {
	crc := crc32.ChecksumIEEE(plain)
	offset := uint32(b.buf.Len())

	b.buf.WriteString("PK\x03\x04")
	b.buf.Write(le16(20))
	b.buf.Write(le16(0))
	b.buf.Write(le16(method))
	b.buf.Write(le16(0))
	b.buf.Write(le16(0))
	b.buf.Write(le32(crc))
	b.buf.Write(le32(uint32(len(wireData))))
	b.buf.Write(le32(uint32(len(plain))))
	b.buf.Write(le16(uint16(len(name))))
	b.buf.Write(le16(0))
	b.buf.WriteString(name)
	b.buf.Write(wireData)

	b.central.WriteString("PK\x01\x02")
	b.central.Write(le16(20))
	b.central.Write(le16(20))
	b.central.Write(le16(0))
	b.central.Write(le16(method))
	b.central.Write(le16(0))
	b.central.Write(le16(0))
	b.central.Write(le32(crc))
	b.central.Write(le32(uint32(len(wireData))))
	b.central.Write(le32(uint32(len(plain))))
	b.central.Write(le16(uint16(len(name))))
	b.central.Write(le16(0))
	b.central.Write(le16(0))
	b.central.Write(le16(0))
	b.central.Write(le16(0))
	b.central.Write(le32(0))
	b.central.Write(le32(offset))
	b.central.WriteString(name)

	b.entries++
}

func (b *testZipBuilder) finish(comment string) []byte {
	centralOffset := uint32(b.buf.Len())
	var out bytes.Buffer
	out.Write(b.buf.Bytes())
	out.Write(b.central.Bytes())

	out.WriteString("PK\x05\x06")
	out.Write(le16(0))
	out.Write(le16(0))
	out.Write(le16(uint16(b.entries)))
	out.Write(le16(uint16(b.entries)))
	out.Write(le32(uint32(b.central.Len())))
	out.Write(le32(centralOffset))
	out.Write(le16(uint16(len(comment))))
	out.WriteString(comment)

	return out.Bytes()
}
