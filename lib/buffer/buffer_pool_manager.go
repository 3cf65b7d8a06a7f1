package buffer

import (
	"errors"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/lintang-b-s/godb/lib/disk"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoAvailableFrame. semua frame pinned & free list kosong.
	ErrNoAvailableFrame = errors.New("no available frame")
)

// https://15445.courses.cs.cmu.edu/spring2023/slides/06-bufferpool.pdf

/*
BufferPoolManager. cache in-memory untuk page yang dipersist di disk. semua
akses page lewat sini: page di admit ke salah satu frame, di pin selama dipakai,
dan frame yang unpinned bisa di evict oleh LRU-K replacer kalau pool penuh.
frame dirty diwrite back ke disk sebelum frame nya di reuse.

semua state transition (pageTable, freeList, replacer, metadata frame) di
serialize oleh satu mutex latch. latch per-frame (buat isi page) terpisah dan
gak pernah diambil sambil hold mutex ini.
*/
type BufferPoolManager struct {
	latch       sync.Mutex
	frames      []*Frame
	poolSize    int
	pageTable   map[disk.PageID]int // mapping pageID -> frameID/index frame. {pageID: frameID}
	freeList    []int               // list frame yang tidak hold any page data.
	replacer    *LRUKReplacer       // LRU-K replacer buat milih frame mana yang di evict.
	nextPageID  disk.PageID
	diskManager DiskManager
	logManager  LogManager
}

// NewBufferPoolManager. initialize buffer pool manager dengan poolSize frame
// dan LRU-K replacer dengan parameter k.
func NewBufferPoolManager(poolSize int, k int, diskManager DiskManager,
	logManager LogManager) *BufferPoolManager {
	frames := make([]*Frame, poolSize)
	for i := 0; i < poolSize; i++ {
		frames[i] = NewFrame(diskManager.PageSize())
	}

	fl := make([]int, poolSize)
	for i := 0; i < poolSize; i++ {
		fl[i] = i
	}

	return &BufferPoolManager{
		frames:      frames,
		poolSize:    poolSize,
		pageTable:   make(map[disk.PageID]int),
		freeList:    fl,
		replacer:    NewLRUKReplacer(poolSize, k),
		nextPageID:  0,
		diskManager: diskManager,
		logManager:  logManager,
	}
}

func (bpm *BufferPoolManager) PoolSize() int {
	return bpm.poolSize
}

// allocatePage. kasih pageID baru dari counter monotonic. caller harus hold latch.
func (bpm *BufferPoolManager) allocatePage() disk.PageID {
	id := bpm.nextPageID
	bpm.nextPageID++
	return id
}

/*
acquireFrame. cari frame buat page baru (pageID): dari freeList kalau masih ada,
else evict victim dari replacer (write back dulu kalau dirty). frame yang
dipilih di zero, di stamp dengan pageID, pin = 1, dan ditandai non-evictable.
caller harus hold latch.
*/
func (bpm *BufferPoolManager) acquireFrame(pageID disk.PageID) (int, error) {
	var frameID int

	if len(bpm.freeList) != 0 {
		// ambil frame dari freeList, kalau freeList tidak kosong
		frameID = bpm.freeList[0]
		bpm.freeList = bpm.freeList[1:]
	} else {
		// kalau freelist kosong, evict frame dari buffer pool
		if !bpm.replacer.Evict(&frameID) {
			// kalau tidak ada frame yang bisa di evict, return err
			return 0, ErrNoAvailableFrame
		}

		victim := bpm.frames[frameID]
		if victim.isDirty {
			// page yang di evict dirty (habis diupdate), write back ke disk
			if err := bpm.diskManager.WritePage(victim.pageID, victim.data); err != nil {
				logrus.WithError(err).WithField("pageID", victim.pageID).
					Error("write back evicted page failed")
				return 0, err
			}
		}
		delete(bpm.pageTable, victim.pageID)
	}

	frame := bpm.frames[frameID]
	frame.reset()
	frame.pageID = pageID
	frame.pinCount = 1

	bpm.pageTable[pageID] = frameID
	bpm.replacer.RecordAccess(frameID)
	bpm.replacer.SetEvictable(frameID, false)

	return frameID, nil
}

/*
NewPage. allocate pageID baru & admit page kosong ke buffer pool. frameID baru
diambil dari freelist, atau dari evict frame lain. frame yang direturn pinned
(pinCount = 1). return ErrNoAvailableFrame kalau semua frame pinned.
*/
func (bpm *BufferPoolManager) NewPage(pageID *disk.PageID) (*Frame, error) {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	if len(bpm.freeList) == 0 && bpm.replacer.Size() == 0 {
		// semua frame pinned/used oleh thread lain, return err
		return nil, ErrNoAvailableFrame
	}

	id := bpm.allocatePage()
	frameID, err := bpm.acquireFrame(id)
	if err != nil {
		return nil, err
	}

	*pageID = id
	return bpm.frames[frameID], nil
}

/*
FetchPage. fetch page dengan pageID dari buffer pool. kalau page tidak ada di
buffer pool, read dari disk & put page di frame dari freelist / frame bekas
evict. frame yang direturn pinned.
*/
func (bpm *BufferPoolManager) FetchPage(pageID disk.PageID) (*Frame, error) {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	if frameID, ok := bpm.pageTable[pageID]; ok {
		// kalau page sudah ada di buffer pool
		frame := bpm.frames[frameID]
		frame.incrementPin() // biar thread lain tahu kalo frame ini lagi dipake
		bpm.replacer.RecordAccess(frameID)
		bpm.replacer.SetEvictable(frameID, false)
		return frame, nil
	}

	frameID, err := bpm.acquireFrame(pageID)
	if err != nil {
		return nil, err
	}

	frame := bpm.frames[frameID]
	if err := bpm.diskManager.ReadPage(pageID, frame.data); err != nil {
		// rollback admit, balikin frame ke freeList
		delete(bpm.pageTable, pageID)
		bpm.replacer.Remove(frameID)
		frame.reset()
		bpm.freeList = append(bpm.freeList, frameID)
		return nil, err
	}

	return frame, nil
}

/*
UnpinPage. unpin page dengan pageID. isDirty di OR ke dirty flag frame: unpin
dengan isDirty=false gak pernah clear dirty flag yang sudah keset (dirty
sampai di flush). kalau pinCount jadi 0, frame ditandai evictable di replacer.
return false kalau page tidak resident atau pinCount sudah 0.
*/
func (bpm *BufferPoolManager) UnpinPage(pageID disk.PageID, isDirty bool) bool {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	frameID, ok := bpm.pageTable[pageID]
	if !ok {
		// not in buffer pool
		return false
	}

	frame := bpm.frames[frameID]
	if frame.pinCount <= 0 {
		// already unpinned
		return false
	}

	frame.decrementPin()
	if isDirty {
		frame.setDirty(true)
	}

	if frame.pinCount == 0 {
		bpm.replacer.SetEvictable(frameID, true)
	}

	return true
}

// flushPage. write frame ke disk & clear dirty flag. caller harus hold latch.
func (bpm *BufferPoolManager) flushPage(frameID int) bool {
	frame := bpm.frames[frameID]
	if err := bpm.diskManager.WritePage(frame.pageID, frame.data); err != nil {
		logrus.WithError(err).WithField("pageID", frame.pageID).Error("flush page failed")
		return false
	}
	frame.setDirty(false)
	return true
}

// FlushPage. write page ke disk unconditionally (dirty atau tidak) & clear
// dirty flag. pin state tidak berubah. return false kalau page tidak resident.
func (bpm *BufferPoolManager) FlushPage(pageID disk.PageID) bool {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	frameID, ok := bpm.pageTable[pageID]
	if !ok {
		return false
	}
	return bpm.flushPage(frameID)
}

// FlushAllPages. flush semua page yang resident di buffer pool.
func (bpm *BufferPoolManager) FlushAllPages() {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	for _, frameID := range bpm.pageTable {
		bpm.flushPage(frameID)
	}
}

/*
DeletePage. remove page dari buffer pool & balikin frame nya ke freeList. data
dirty di discard tanpa write back. return true kalau page tidak resident,
false kalau page masih pinned.
*/
func (bpm *BufferPoolManager) DeletePage(pageID disk.PageID) bool {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	frameID, ok := bpm.pageTable[pageID]
	if !ok {
		// page tidak ada di buffer pool
		return true
	}

	if bpm.frames[frameID].pinCount > 0 {
		// page masih di pin
		return false
	}

	bpm.frames[frameID].reset()
	delete(bpm.pageTable, pageID)
	bpm.freeList = append(bpm.freeList, frameID)
	bpm.replacer.Remove(frameID)
	return true
}

// NewPageGuarded. NewPage yang direturn sebagai guard; pin dilepas pas guard di Drop.
func (bpm *BufferPoolManager) NewPageGuarded(pageID *disk.PageID) (*BasicPageGuard, error) {
	frame, err := bpm.NewPage(pageID)
	if err != nil {
		return nil, err
	}
	return &BasicPageGuard{bpm: bpm, frame: frame}, nil
}

// FetchPageBasic. FetchPage yang direturn sebagai guard tanpa latch.
func (bpm *BufferPoolManager) FetchPageBasic(pageID disk.PageID) (*BasicPageGuard, error) {
	frame, err := bpm.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	return &BasicPageGuard{bpm: bpm, frame: frame}, nil
}

// FetchPageRead. fetch page & hold reader latch nya. latch diambil SETELAH
// mutex manager dilepas (FetchPage sudah return), biar gak deadlock dengan
// thread yang hold latch frame & mau unpin.
func (bpm *BufferPoolManager) FetchPageRead(pageID disk.PageID) (*ReadPageGuard, error) {
	frame, err := bpm.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	frame.RLatch()
	return &ReadPageGuard{guard: BasicPageGuard{bpm: bpm, frame: frame}}, nil
}

// FetchPageWrite. fetch page & hold writer latch nya. ordering sama dengan
// FetchPageRead.
func (bpm *BufferPoolManager) FetchPageWrite(pageID disk.PageID) (*WritePageGuard, error) {
	frame, err := bpm.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	frame.WLatch()
	return &WritePageGuard{guard: BasicPageGuard{bpm: bpm, frame: frame}}, nil
}

/*
AuditPool. cek invariant internal buffer pool:

 1. tiap entry pageTable nunjuk ke frame yang pageID nya sama dengan key nya
 2. freeList dan pageTable disjoint
 3. |freeList| + |resident| = poolSize
 4. jumlah frame evictable di replacer = jumlah frame resident dengan pinCount 0

return error pada violation pertama yang ketemu.
*/
func (bpm *BufferPoolManager) AuditPool() error {
	bpm.latch.Lock()
	defer bpm.latch.Unlock()

	freeSet := mapset.NewThreadUnsafeSet[int]()
	for _, frameID := range bpm.freeList {
		freeSet.Add(frameID)
	}

	residentSet := mapset.NewThreadUnsafeSet[int]()
	unpinnedResident := 0
	for pageID, frameID := range bpm.pageTable {
		frame := bpm.frames[frameID]
		if frame.pageID != pageID {
			return errors.New("page table entry points to frame with different pageID")
		}
		residentSet.Add(frameID)
		if frame.pinCount == 0 {
			unpinnedResident++
		}
	}

	if residentSet.Cardinality() != len(bpm.pageTable) {
		return errors.New("two page table entries share one frame")
	}
	if freeSet.Intersect(residentSet).Cardinality() != 0 {
		return errors.New("frame in both free list and page table")
	}
	if freeSet.Cardinality()+residentSet.Cardinality() != bpm.poolSize {
		return errors.New("free list + resident frames != pool size")
	}
	if bpm.replacer.Size() != unpinnedResident {
		return errors.New("replacer size != number of unpinned resident frames")
	}
	return nil
}
