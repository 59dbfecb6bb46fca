package skeleton

import "github.com/tessera-chain/corestack/skeleton/interval"

// Tally tracks three interval sets over block numbers: mask (headers still
// needing fetch), pulled (headers already downloaded), and bodyMask (headers
// stashed but whose bodies are not yet fetched). mask and pulled are kept
// disjoint in steady state; bodyMask is a subset of pulled.
type Tally struct {
	mask     *interval.Set
	pulled   *interval.Set
	bodyMask *interval.Set

	maxPulled uint64
	hasPulled bool
}

// NewTally returns an empty interval tally.
func NewTally() *Tally {
	return &Tally{mask: interval.New(), pulled: interval.New(), bodyMask: interval.New()}
}

// HeadTally merges head into pulled; if head exceeds the highest number
// pulled so far, the gap between them is merged into mask; head itself is
// then removed from mask and merged into bodyMask, since its body has not
// been fetched yet.
func (t *Tally) HeadTally(head uint64) {
	t.pulled.Merge(head, head)

	if !t.hasPulled || head > t.maxPulled {
		if t.hasPulled && t.maxPulled+1 <= head-1 {
			t.mask.Merge(t.maxPulled+1, head-1)
		} else if !t.hasPulled && head > 0 {
			t.mask.Merge(0, head-1)
		}
		t.maxPulled = head
		t.hasPulled = true
	}
	t.mask.Reduce(head, head)
	t.bodyMask.Merge(head, head)
}

// Job is a single GetBlocks(n, maxResults) unit of work emitted while
// filling gaps in the mask.
type Job struct {
	Start      uint64
	MaxResults int
}

// FillBlocksGaps chops [least, last] into jobs of at most maxGetBlocks
// block numbers, removing each chunk from mask as it is emitted.
func (t *Tally) FillBlocksGaps(least, last uint64, maxGetBlocks int) []Job {
	if least > last || maxGetBlocks <= 0 {
		return nil
	}
	var jobs []Job
	for n := least; n <= last; {
		remaining := last - n + 1
		size := uint64(maxGetBlocks)
		if remaining < size {
			size = remaining
		}
		jobs = append(jobs, Job{Start: n, MaxResults: int(size)})
		t.mask.Reduce(n, n+size-1)
		if n+size-1 == last {
			break
		}
		n += size
	}
	return jobs
}

// Mask returns the underlying unprocessed interval set.
func (t *Tally) Mask() *interval.Set { return t.mask }

// Pulled returns the underlying already-downloaded interval set.
func (t *Tally) Pulled() *interval.Set { return t.pulled }

// BodyMask returns the underlying interval set of headers whose bodies have
// not yet been fetched.
func (t *Tally) BodyMask() *interval.Set { return t.bodyMask }

// BodyFetched removes number from the body mask once its body has been
// verified and stashed.
func (t *Tally) BodyFetched(number uint64) {
	t.bodyMask.Reduce(number, number)
}
