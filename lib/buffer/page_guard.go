package buffer

import (
	"github.com/lintang-b-s/godb/lib/disk"
)

/*
BasicPageGuard. scoped handle yang own satu pin di buffer pool. Drop lepasin
pin nya (dengan dirty flag yang ke-accumulate lewat DataMut) dan idempotent:
Drop kedua kali no-op. guard yang sudah di Drop / sudah dipindah lewat MoveFrom
jadi inert.

guard refer ke manager secara non-owning; manager harus outlive semua guard.
*/
type BasicPageGuard struct {
	bpm     *BufferPoolManager
	frame   *Frame
	isDirty bool
}

// Drop. unpin page & buat guard jadi inert. idempotent.
func (g *BasicPageGuard) Drop() {
	if g.bpm == nil || g.frame == nil {
		return
	}
	g.bpm.UnpinPage(g.frame.PageID(), g.isDirty)
	g.bpm = nil
	g.frame = nil
	g.isDirty = false
}

// MoveFrom. transfer ownership pin dari that ke g. pin yang lagi di hold g
// dilepas dulu, lalu that jadi inert.
func (g *BasicPageGuard) MoveFrom(that *BasicPageGuard) {
	if g == that {
		return
	}
	g.Drop()
	g.bpm = that.bpm
	g.frame = that.frame
	g.isDirty = that.isDirty
	that.bpm = nil
	that.frame = nil
	that.isDirty = false
}

func (g *BasicPageGuard) PageID() disk.PageID {
	return g.frame.PageID()
}

// Data. read-only view ke page buffer.
func (g *BasicPageGuard) Data() []byte {
	return g.frame.Data()
}

// DataMut. mutable view ke page buffer. manggil ini menandai guard dirty,
// yang dilaporkan ke manager pas unpin.
func (g *BasicPageGuard) DataMut() []byte {
	g.isDirty = true
	return g.frame.Data()
}

// Page. typed read accessor di atas page buffer.
func (g *BasicPageGuard) Page() *disk.Page {
	return disk.NewPageFromByteSlice(g.frame.Data())
}

// PageMut. typed mutable accessor; menandai guard dirty.
func (g *BasicPageGuard) PageMut() *disk.Page {
	g.isDirty = true
	return disk.NewPageFromByteSlice(g.frame.Data())
}

// ReadPageGuard. BasicPageGuard plus reader latch yang lagi di hold.
type ReadPageGuard struct {
	guard BasicPageGuard
}

// Drop. unpin lalu release reader latch. idempotent.
func (g *ReadPageGuard) Drop() {
	if g.guard.frame == nil {
		return
	}
	frame := g.guard.frame
	g.guard.Drop()
	frame.RUnlatch()
}

// MoveFrom. transfer pin + reader latch dari that ke g. holdings g dilepas dulu.
func (g *ReadPageGuard) MoveFrom(that *ReadPageGuard) {
	if g == that {
		return
	}
	g.Drop()
	g.guard = that.guard
	that.guard = BasicPageGuard{}
}

func (g *ReadPageGuard) PageID() disk.PageID {
	return g.guard.PageID()
}

func (g *ReadPageGuard) Data() []byte {
	return g.guard.Data()
}

func (g *ReadPageGuard) Page() *disk.Page {
	return g.guard.Page()
}

// WritePageGuard. BasicPageGuard plus writer latch yang lagi di hold.
type WritePageGuard struct {
	guard BasicPageGuard
}

// Drop. unpin lalu release writer latch. idempotent.
func (g *WritePageGuard) Drop() {
	if g.guard.frame == nil {
		return
	}
	frame := g.guard.frame
	g.guard.Drop()
	frame.WUnlatch()
}

// MoveFrom. transfer pin + writer latch dari that ke g. holdings g dilepas dulu.
func (g *WritePageGuard) MoveFrom(that *WritePageGuard) {
	if g == that {
		return
	}
	g.Drop()
	g.guard = that.guard
	that.guard = BasicPageGuard{}
}

func (g *WritePageGuard) PageID() disk.PageID {
	return g.guard.PageID()
}

func (g *WritePageGuard) Data() []byte {
	return g.guard.Data()
}

// DataMut. mutable view; menandai guard dirty, dilaporkan pas unpin.
func (g *WritePageGuard) DataMut() []byte {
	return g.guard.DataMut()
}

func (g *WritePageGuard) PageMut() *disk.Page {
	return g.guard.PageMut()
}
