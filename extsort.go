package extsort

import (
	"time"
)

// Stats summarizes a full Sort run.
type Stats struct {
	Chunks       int
	SplitDropped int64 // lines dropped while splitting (numeric codecs)
	SortDropped  int64 // lines dropped while sorting chunks
	Merge        MergeStats

	SplitDuration time.Duration
	SortDuration  time.Duration
	MergeDuration time.Duration
}

// Dropped returns the total number of unparsable lines skipped across all
// phases.
func (s Stats) Dropped() int64 {
	return s.SplitDropped + s.SortDropped + s.Merge.Dropped
}

// Sort externally sorts the file in into out: Split, then SortAll, then
// Merge. Chunk files are created beside in and are all removed when Sort
// succeeds.
//
// If any chunk fails to sort, the merge is not attempted and the chunk
// files are left for inspection, since merging an unsorted chunk would break
// the global order.
func Sort[T any](in, out string, codec Codec[T], cmp Compare[T], opts ...Option) (Stats, error) {
	var st Stats
	cfg, err := newConfig(opts)
	if err != nil {
		return st, err
	}
	log := cfg.logger

	t0 := time.Now()
	sp, err := split(in, codec, cfg)
	st.SplitDuration = time.Since(t0)
	if err != nil {
		return st, err
	}
	st.Chunks = sp.chunks
	st.SplitDropped = sp.dropped

	t1 := time.Now()
	so, err := sortAll(in, sp.chunks, codec, cmp, cfg)
	st.SortDuration = time.Since(t1)
	st.SortDropped = so.dropped
	if err != nil {
		return st, err
	}

	t2 := time.Now()
	st.Merge, err = merge(in, sp.chunks, out, codec, cmp, cfg)
	st.MergeDuration = time.Since(t2)
	if err != nil {
		return st, err
	}

	log.Info("external sort complete",
		"input", in,
		"output", out,
		"chunks", st.Chunks,
		"records", st.Merge.Records,
		"dropped", st.Dropped(),
		"split", st.SplitDuration,
		"sort", st.SortDuration,
		"merge", st.MergeDuration)
	return st, nil
}
