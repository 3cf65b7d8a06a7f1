package buffer

import (
	"fmt"
	"sync"
)

// lruKNode. access history satu frame di dalam LRUKReplacer. maksimal k
// timestamp terakhir yang disimpan.
type lruKNode struct {
	history     []uint64
	k           int
	isEvictable bool
}

func newLRUKNode(k int) *lruKNode {
	return &lruKNode{history: make([]uint64, 0, k), k: k}
}

func (n *lruKNode) addHistory(timestamp uint64) {
	if len(n.history) >= n.k {
		// drop access paling lama
		copy(n.history, n.history[1:])
		n.history = n.history[:len(n.history)-1]
	}
	n.history = append(n.history, timestamp)
}

// isOldCache. frame sudah "lulus" dari new queue kalau access historynya >= k.
func (n *lruKNode) isOldCache() bool {
	return len(n.history) >= n.k
}

/*
LRUKReplacer. two-queue LRU-K eviction policy. frame dengan access history < k
disimpan di newQueue, frame dengan history >= k di oldQueue. victim selalu
diambil dari newQueue dulu, baru oldQueue; di dalam tiap queue yang least
recently used yang menang.
*/
type LRUKReplacer struct {
	mu               sync.Mutex
	numFrames        int
	k                int
	currSize         int
	currentTimestamp uint64
	nodes            map[int]*lruKNode
	newQueue         *LRUReplacer
	oldQueue         *LRUReplacer
}

func NewLRUKReplacer(numFrames int, k int) *LRUKReplacer {
	return &LRUKReplacer{
		numFrames: numFrames,
		k:         k,
		nodes:     make(map[int]*lruKNode),
		newQueue:  NewLRUReplacer(numFrames),
		oldQueue:  NewLRUReplacer(numFrames),
	}
}

// Evict. pilih victim dari newQueue dulu, kalau kosong baru oldQueue. sukses
// return true & assign frameID. return false kalau gak ada frame yang evictable.
func (r *LRUKReplacer) Evict(frameID *int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.newQueue.Size()+r.oldQueue.Size() == 0 {
		return false
	}

	if r.newQueue.Size() != 0 && r.newQueue.Victim(frameID) {
		r.currSize--
		delete(r.nodes, *frameID)
		return true
	}

	if r.oldQueue.Size() != 0 && r.oldQueue.Victim(frameID) {
		r.currSize--
		delete(r.nodes, *frameID)
		return true
	}

	return false
}

// RecordAccess. record access frameID pada timestamp sekarang. dipanggil tiap
// page di pin/fetch. kalau node nya evictable dan historynya baru mencapai k,
// node dipindah dari newQueue ke oldQueue.
func (r *LRUKReplacer) RecordAccess(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currentTimestamp++

	node, ok := r.nodes[frameID]
	if !ok {
		node = newLRUKNode(r.k)
		node.addHistory(r.currentTimestamp)
		r.nodes[frameID] = node
		return
	}

	if !node.isEvictable {
		node.addHistory(r.currentTimestamp)
		return
	}

	if node.isOldCache() {
		node.addHistory(r.currentTimestamp)
		r.oldQueue.Access(frameID)
		return
	}

	node.addHistory(r.currentTimestamp)
	if node.isOldCache() {
		// baru lulus dari new queue
		r.newQueue.Pin(frameID)
		r.oldQueue.Unpin(frameID)
	} else {
		r.newQueue.Access(frameID)
	}
}

// SetEvictable. set status evictable frameID.
//
// evictable=true: node dibuat kalau belum ada, lalu ditaruh di queue yang
// sesuai graduation statusnya. evictable=false: node di remove dari queuenya
// dan di drop beserta access historynya.
func (r *LRUKReplacer) SetEvictable(frameID int, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameID]
	if !ok {
		if !evictable {
			return
		}
		r.reserveSlot()
		node = newLRUKNode(r.k)
		node.isEvictable = true
		r.nodes[frameID] = node
		r.newQueue.Unpin(frameID)
		return
	}

	if evictable {
		if !node.isEvictable {
			node.isEvictable = true
			r.reserveSlot()
			if node.isOldCache() {
				r.oldQueue.Unpin(frameID)
			} else {
				r.newQueue.Unpin(frameID)
			}
		}
		return
	}

	if node.isOldCache() {
		r.oldQueue.Pin(frameID)
	} else {
		r.newQueue.Pin(frameID)
	}
	if node.isEvictable {
		r.currSize--
	}
	// history di discard pas frame di pin
	delete(r.nodes, frameID)
}

// reserveSlot. caller harus hold r.mu. kalau replacer sudah penuh, evict satu
// victim buat kasih tempat; kalau belum, tambah currSize.
func (r *LRUKReplacer) reserveSlot() {
	if r.currSize < r.numFrames {
		r.currSize++
		return
	}

	var victim int
	if r.newQueue.Size() > 0 {
		if !r.newQueue.Victim(&victim) {
			panic("lruk replacer: new queue size not zero, but can't victim")
		}
	} else {
		if !r.oldQueue.Victim(&victim) {
			panic("lruk replacer: old queue size not zero, but can't victim")
		}
	}

	if _, ok := r.nodes[victim]; !ok {
		panic(fmt.Sprintf("lruk replacer: victim frame %d not tracked", victim))
	}
	delete(r.nodes, victim)
}

// Remove. drop semua record frameID. dipanggil BufferPoolManager pas delete page.
func (r *LRUKReplacer) Remove(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameID]
	if !ok {
		return
	}

	if node.isEvictable {
		if node.isOldCache() {
			r.oldQueue.Pin(frameID)
		} else {
			r.newQueue.Pin(frameID)
		}
		r.currSize--
	}
	delete(r.nodes, frameID)
}

// Size. jumlah frame evictable yang di track replacer.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currSize
}
