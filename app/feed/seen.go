package feed

// SeenSet is the cross-run record of processed URLs. It keeps insertion
// order so capping can evict the oldest entries first.
type SeenSet struct {
	order []seenEntry
	index map[string]int // url -> seq of its live entry
	seq   int
}

type seenEntry struct {
	url string
	seq int
}

func NewSeenSet(urls []string) *SeenSet {
	s := &SeenSet{index: make(map[string]int, len(urls))}
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

func (s *SeenSet) Contains(url string) bool {
	_, ok := s.index[url]
	return ok
}

// Add records url as the newest entry. Re-adding a known url refreshes it.
func (s *SeenSet) Add(url string) {
	if url == "" {
		return
	}
	s.seq++
	s.index[url] = s.seq
	s.order = append(s.order, seenEntry{url: url, seq: s.seq})

	if len(s.order) > 2*len(s.index)+64 {
		s.compact()
	}
}

func (s *SeenSet) Len() int {
	return len(s.index)
}

// URLs returns the set oldest first.
func (s *SeenSet) URLs() []string {
	s.compact()
	out := make([]string, 0, len(s.order))
	for _, e := range s.order {
		out = append(out, e.url)
	}
	return out
}

// Cap evicts the oldest entries until at most max remain.
func (s *SeenSet) Cap(max int) {
	if max < 0 {
		max = 0
	}
	s.compact()
	if len(s.order) <= max {
		return
	}

	evict := len(s.order) - max
	for _, e := range s.order[:evict] {
		delete(s.index, e.url)
	}
	s.order = append([]seenEntry(nil), s.order[evict:]...)
}

// compact drops entries superseded by a later Add of the same url.
func (s *SeenSet) compact() {
	if len(s.order) == len(s.index) {
		return
	}

	kept := make([]seenEntry, 0, len(s.index))
	for _, e := range s.order {
		if s.index[e.url] == e.seq {
			kept = append(kept, e)
		}
	}
	s.order = kept
}
