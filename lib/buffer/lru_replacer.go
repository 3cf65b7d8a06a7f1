package buffer

import (
	"sync"
)

type ListNode struct {
	Key  int
	next *ListNode
	prev *ListNode
}

func NewListNode(key int, next, prev *ListNode) *ListNode {
	return &ListNode{Key: key, next: next, prev: prev}
}

type DoubleLinkedList struct {
	head *ListNode // most recently used
	tail *ListNode // least recently used
}

// null <--> head <-> tail <-> null
//
//	-> next
//	<- prev
func NewDoubleLinkedList() *DoubleLinkedList {
	head := NewListNode(-1, nil, nil)
	tail := NewListNode(-1, nil, nil)
	head.next = tail
	tail.prev = head

	return &DoubleLinkedList{head: head, tail: tail}
}

func (d *DoubleLinkedList) Remove(node *ListNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

// PushFront. push ke nextnya head. node paling front adalah node most recently used
func (d *DoubleLinkedList) PushFront(val int) *ListNode {
	newNode := NewListNode(val, nil, nil)

	nextFrontNode := d.head

	d.head.next.prev = newNode
	newNode.next = d.head.next

	newNode.prev = nextFrontNode
	nextFrontNode.next = newNode

	return newNode
}

// Back. return node prevnya tail. node ini adalah node least recently used
func (d *DoubleLinkedList) Back() *ListNode {
	return d.tail.prev
}

// LRUReplacer. FIFO-of-last-use queue dari frame yang evictable. membership
// berarti frame boleh di evict; frame pinned gak ada di queue ini.
type LRUReplacer struct {
	mu       sync.Mutex
	capacity int
	lst      *DoubleLinkedList
	index    map[int]*ListNode
}

func NewLRUReplacer(capacity int) *LRUReplacer {
	return &LRUReplacer{
		capacity: capacity,
		lst:      NewDoubleLinkedList(),
		index:    make(map[int]*ListNode),
	}
}

// Unpin. marks a frame as unpinned, making it eligible for eviction dari LRU.
// kalau queue penuh, entry paling lama (least recently used) di evict dulu.
func (lru *LRUReplacer) Unpin(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if _, ok := lru.index[frameID]; ok {
		// already in the list
		return
	}

	if len(lru.index) >= lru.capacity {
		oldest := lru.lst.Back()
		lru.lst.Remove(oldest)
		delete(lru.index, oldest.Key)
	}

	elem := lru.lst.PushFront(frameID) // most recently used
	lru.index[frameID] = elem
}

// Pin marks a frame as pinned. buat frame jadi ineligible for eviction dari LRU
func (lru *LRUReplacer) Pin(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.index[frameID]; ok {
		lru.lst.Remove(elem)       // remove from list
		delete(lru.index, frameID) // remove from index
	}
}

// Access. move frame ke most recently used end. no-op kalau frame gak ada di queue.
func (lru *LRUReplacer) Access(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.index[frameID]; ok {
		lru.lst.Remove(elem)
		lru.index[frameID] = lru.lst.PushFront(frameID)
	}
}

// Victim. return frameID yang akan di evict dari LRU (yang least recently used di prevnya tail..)
func (lru *LRUReplacer) Victim(frameID *int) bool {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if len(lru.index) == 0 {
		return false
	}

	backElem := lru.lst.Back() // least recently used

	lru.lst.Remove(backElem)
	delete(lru.index, backElem.Key)

	*frameID = backElem.Key
	return true
}

// Remove. remove frame dari LRU
func (lru *LRUReplacer) Remove(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.index[frameID]; ok {
		lru.lst.Remove(elem)
		delete(lru.index, frameID)
	}
}

// Size. return jumlah frame dalam LRU
func (lru *LRUReplacer) Size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	return len(lru.index)
}
