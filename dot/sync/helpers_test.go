package sync

import (
	"fmt"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/maciekf/grin-sync/lib/common"
)

// recordingLogger is a Logger that records every formatted line, so tests
// can assert on observable log output.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func newRecordingLogger() *recordingLogger { return &recordingLogger{} }

func (l *recordingLogger) record(level, format string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+": "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...any)    { l.record("debug", format, args) }
func (l *recordingLogger) Infof(format string, args ...any)     { l.record("info", format, args) }
func (l *recordingLogger) Warnf(format string, args ...any)     { l.record("warn", format, args) }
func (l *recordingLogger) Errorf(format string, args ...any)    { l.record("error", format, args) }
func (l *recordingLogger) Criticalf(format string, args ...any) { l.record("critical", format, args) }

func (l *recordingLogger) has(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if len(line) >= len(level) && line[:len(level)] == level {
			if containsSubstring(line, substr) {
				return true
			}
		}
	}
	return false
}

func containsSubstring(haystack, needle string) bool {
	return len(needle) == 0 || indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// sliceDifficultyIterator adapts a plain slice (with optional errors) to
// the DifficultyIterator interface.
type sliceDifficultyIterator struct {
	values []common.Difficulty
	errs   []error
	i      int
}

func newDifficultyIterator(values ...common.Difficulty) *sliceDifficultyIterator {
	return &sliceDifficultyIterator{values: values, errs: make([]error, len(values))}
}

func (it *sliceDifficultyIterator) withErrorAt(index int, err error) *sliceDifficultyIterator {
	it.errs[index] = err
	return it
}

func (it *sliceDifficultyIterator) Next() (common.Difficulty, error, bool) {
	if it.i >= len(it.values) {
		return common.ZeroDifficulty(), nil, false
	}
	v, err := it.values[it.i], it.errs[it.i]
	it.i++
	return v, err, true
}

// fakeClock is a manually-advanced Clock for deterministic cadence tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the fake clock by d instead of blocking.
func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.Sleep(d)
}

// fakePeerReader is a simple, non-mock PeerReader used by tests that only
// assert on which requests were sent, not on call counts/ordering.
type fakePeerReader struct {
	address       string
	height        uint64
	difficulty    common.Difficulty
	headerReqs    [][]common.Hash
	blockReqs     []common.Hash
	txHashSetReqs []struct {
		height uint64
		hash   common.Hash
	}
}

func (p *fakePeerReader) Address() peer.ID { return peer.ID(p.address) }

func (p *fakePeerReader) AdvertisedHeight() uint64                     { return p.height }
func (p *fakePeerReader) AdvertisedTotalDifficulty() common.Difficulty { return p.difficulty }

func (p *fakePeerReader) SendHeaderRequest(locator []common.Hash) error {
	p.headerReqs = append(p.headerReqs, locator)
	return nil
}

func (p *fakePeerReader) SendBlockRequest(hash common.Hash) error {
	p.blockReqs = append(p.blockReqs, hash)
	return nil
}

func (p *fakePeerReader) SendTxHashSetRequest(height uint64, hash common.Hash) error {
	p.txHashSetReqs = append(p.txHashSetReqs, struct {
		height uint64
		hash   common.Hash
	}{height, hash})
	return nil
}

func (p *fakePeerReader) Release() {}

// fakePeer is a Peer whose TryRead either yields its reader or reports a
// failed non-blocking acquisition, simulating the RwLock::try_read contract.
type fakePeer struct {
	reader     *fakePeerReader
	unreadable bool
}

func newFakePeer(address string, height uint64, difficulty common.Difficulty) *fakePeer {
	return &fakePeer{reader: &fakePeerReader{address: address, height: height, difficulty: difficulty}}
}

func (p *fakePeer) TryRead() (PeerReader, bool) {
	if p.unreadable {
		return nil, false
	}
	return p.reader, true
}

// fakePeerSet is a PeerSet built from a fixed peer list, selecting the
// most/more-work peers by advertised difficulty, mirroring internal/peerset.
type fakePeerSet struct {
	peers []*fakePeer
}

func newFakePeerSet(peers ...*fakePeer) *fakePeerSet {
	return &fakePeerSet{peers: peers}
}

func (s *fakePeerSet) MostWorkPeer() (Peer, bool) {
	if len(s.peers) == 0 {
		return nil, false
	}
	best := s.peers[0]
	for _, p := range s.peers[1:] {
		if p.reader.difficulty.GreaterThan(best.reader.difficulty) {
			best = p
		}
	}
	return best, true
}

func (s *fakePeerSet) MoreWorkPeers(localDifficulty common.Difficulty) []Peer {
	var more []Peer
	for _, p := range s.peers {
		if p.reader.difficulty.GreaterThan(localDifficulty) {
			more = append(more, p)
		}
	}
	return more
}

// fakeChain is a small in-memory Chain used by body/fast-sync and driver
// tests: a linear header chain plus a set of "on current chain" markers and
// stored/orphan block sets.
type fakeChain struct {
	headers map[common.Hash]*common.BlockHeader
	onChain map[common.Hash]bool
	stored  map[common.Hash]bool
	orphans map[common.Hash]bool

	head            common.Tip
	headerHead      common.Tip
	syncHead        common.Tip
	totalDifficulty common.Difficulty
	diffIter        DifficultyIterator

	resetHeadCalls int
	failHead       bool
	failHeaderHead bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		headers:         map[common.Hash]*common.BlockHeader{},
		onChain:         map[common.Hash]bool{},
		stored:          map[common.Hash]bool{},
		orphans:         map[common.Hash]bool{},
		totalDifficulty: common.ZeroDifficulty(),
		diffIter:        newDifficultyIterator(),
	}
}

// hashForHeight derives a deterministic, distinct hash for a given height,
// used throughout tests to build linear header chains without caring about
// real content hashing.
func hashForHeight(height uint64) common.Hash {
	var h common.Hash
	h[31] = byte(height)
	h[30] = byte(height >> 8)
	h[29] = byte(height >> 16)
	return h
}

// addLinearChain builds headers for heights [0, tip], each pointing at the
// previous one, and registers them all as "on current chain."
func (c *fakeChain) addLinearChain(tip uint64) {
	var prev common.Hash
	for h := uint64(0); h <= tip; h++ {
		hash := hashForHeight(h)
		c.headers[hash] = &common.BlockHeader{
			Hash:            hash,
			PreviousHash:    prev,
			Height:          h,
			TotalDifficulty: common.NewDifficulty(h),
		}
		c.onChain[hash] = true
		c.stored[hash] = true
		prev = hash
	}
	c.totalDifficulty = common.NewDifficulty(tip)
}

func (c *fakeChain) Head() (common.Tip, error) {
	if c.failHead {
		return common.Tip{}, fmt.Errorf("fake: head unavailable")
	}
	return c.head, nil
}

func (c *fakeChain) HeaderHead() (common.Tip, error) {
	if c.failHeaderHead {
		return common.Tip{}, fmt.Errorf("fake: header head unavailable")
	}
	return c.headerHead, nil
}

func (c *fakeChain) SyncHead() (common.Tip, error) { return c.syncHead, nil }

func (c *fakeChain) TotalDifficulty() (common.Difficulty, error) { return c.totalDifficulty, nil }

func (c *fakeChain) GetBlockHeader(hash common.Hash) (*common.BlockHeader, error) {
	h, ok := c.headers[hash]
	if !ok {
		return nil, fmt.Errorf("fake: unknown header %s", hash.Short())
	}
	return h, nil
}

func (c *fakeChain) IsOnCurrentChain(header *common.BlockHeader) (bool, error) {
	return c.onChain[header.Hash], nil
}

func (c *fakeChain) HasBlock(hash common.Hash) (bool, error) { return c.stored[hash], nil }

func (c *fakeChain) IsOrphan(hash common.Hash) bool { return c.orphans[hash] }

func (c *fakeChain) DifficultyIter() DifficultyIterator { return c.diffIter }

func (c *fakeChain) ResetHead() error {
	c.resetHeadCalls++
	return nil
}

// fakeProtocolParams reports a fixed cut-through horizon.
type fakeProtocolParams struct {
	horizon uint64
}

func (p fakeProtocolParams) CutThroughHorizon() uint64 { return p.horizon }
