package disk

import (
	"encoding/binary"
	"errors"
)

// Page . typed accessor view over one page-size byte buffer. Page tidak punya
// buffer sendiri: dia wrap buffer milik frame di buffer pool (atau buffer log),
// jadi semua Put/Get langsung mutate buffer tersebut.
type Page struct {
	buf []byte
}

func NewPage(pageSize int) *Page {
	return &Page{buf: make([]byte, pageSize)}
}

// NewPageFromByteSlice. wrap byte slice yang sudah ada tanpa copy.
func NewPageFromByteSlice(b []byte) *Page {
	return &Page{buf: b}
}

func (p *Page) Contents() []byte {
	return p.buf
}

func (p *Page) GetInt(offset int32) int32 {
	return int32(binary.LittleEndian.Uint32(p.buf[offset:]))
}

// PutInt. set int ke byte array page di posisi = offset.
func (p *Page) PutInt(offset int32, val int32) {
	binary.LittleEndian.PutUint32(p.buf[offset:], uint32(val))
}

func (p *Page) PutUint16(offset int32, val uint16) {
	binary.LittleEndian.PutUint16(p.buf[offset:], val)
}

func (p *Page) GetUint16(offset int32) uint16 {
	return binary.LittleEndian.Uint16(p.buf[offset:])
}

func (p *Page) PutUint64(offset int32, val uint64) {
	binary.LittleEndian.PutUint64(p.buf[offset:], val)
}

func (p *Page) GetUint64(offset int32) uint64 {
	return binary.LittleEndian.Uint64(p.buf[offset:])
}

// GetBytes. return byte array dari page di posisi = offset. 4 bytes pertama berisi panjang bytes nya.
func (p *Page) GetBytes(offset int32) []byte {
	length := p.GetInt(offset)
	b := make([]byte, length)
	copy(b, p.buf[offset+4:offset+4+length])
	return b
}

// PutBytes. set byte array (length-prefixed) ke page di posisi = offset.
func (p *Page) PutBytes(offset int32, b []byte) (int, error) {
	if offset+4+int32(len(b)) > int32(len(p.buf)) {
		return 0, errors.New("put bytes out of bound")
	}
	p.PutInt(offset, int32(len(b)))
	copy(p.buf[offset+4:], b)
	return len(b) + 4, nil
}

// GetString. return string dari page di posisi = offset.
func (p *Page) GetString(offset int32) string {
	return string(p.GetBytes(offset))
}

// PutString. set string ke page di posisi = offset.
func (p *Page) PutString(offset int32, s string) (int, error) {
	return p.PutBytes(offset, []byte(s))
}
