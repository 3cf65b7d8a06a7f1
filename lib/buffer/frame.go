package buffer

import (
	"sync"

	"github.com/lintang-b-s/godb/lib/disk"
)

// DiskManager. collaborator buat read/write page dari/ke disk.
type DiskManager interface {
	ReadPage(pageID disk.PageID, data []byte) error
	WritePage(pageID disk.PageID, data []byte) error
	PageSize() int
}

// LogManager. disimpan BufferPoolManager buat integrasi write-ahead-log nanti;
// belum dipanggil dari sini.
type LogManager interface {
	Flush(lsn int) error
	FlushAll() error
}

// Frame . satu slot di buffer pool yang menyimpan data satu page dari disk
// selama statusnya masih pinned (pinCount > 0). frame dengan pinCount = 0
// evictable dan bisa di replace oleh page lain.
type Frame struct {
	data     []byte
	pageID   disk.PageID
	pinCount int
	isDirty  bool // isDirty = true -> harus diwrite ke disk sebelum frame di reuse
	latch    sync.RWMutex
}

func NewFrame(pageSize int) *Frame {
	return &Frame{
		data:   make([]byte, pageSize),
		pageID: disk.InvalidPageID,
	}
}

// Data. return raw page buffer dari frame.
func (f *Frame) Data() []byte {
	return f.data
}

// Page. return typed accessor view di atas buffer frame (tanpa copy).
func (f *Frame) Page() *disk.Page {
	return disk.NewPageFromByteSlice(f.data)
}

func (f *Frame) PageID() disk.PageID {
	return f.pageID
}

func (f *Frame) PinCount() int {
	return f.pinCount
}

func (f *Frame) IsDirty() bool {
	return f.isDirty
}

// reset. kosongkan frame: zero seluruh page buffer (bukan cuma sampai byte nol
// pertama), invalidate pageID, reset pin & dirty.
func (f *Frame) reset() {
	for i := range f.data {
		f.data[i] = 0
	}
	f.pageID = disk.InvalidPageID
	f.pinCount = 0
	f.isDirty = false
}

func (f *Frame) incrementPin() {
	f.pinCount++
}

func (f *Frame) decrementPin() {
	f.pinCount--
}

func (f *Frame) setDirty(isDirty bool) {
	f.isDirty = isDirty
}

// RLatch. reader latch untuk isi page. terpisah dari mutex BufferPoolManager:
// latch ini gak boleh diambil sambil hold mutex manager.
func (f *Frame) RLatch() {
	f.latch.RLock()
}

func (f *Frame) RUnlatch() {
	f.latch.RUnlock()
}

// WLatch. writer latch untuk isi page.
func (f *Frame) WLatch() {
	f.latch.Lock()
}

func (f *Frame) WUnlatch() {
	f.latch.Unlock()
}
