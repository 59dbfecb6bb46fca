package interval

import "testing"

func TestMergeCoalescesTouchingRanges(t *testing.T) {
	s := New()
	s.Merge(10, 20)
	s.Merge(21, 30) // adjacent, should coalesce
	s.Merge(5, 8)   // disjoint, stays separate

	got := s.Ranges()
	want := []Range{{5, 8}, {10, 30}}
	if len(got) != len(want) {
		t.Fatalf("range count mismatch: have %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d: have %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReduceSplitsStraddlingRange(t *testing.T) {
	s := New()
	s.Merge(1, 100)
	s.Reduce(40, 60)

	got := s.Ranges()
	want := []Range{{1, 39}, {61, 100}}
	if len(got) != len(want) {
		t.Fatalf("range count mismatch: have %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d: have %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCovered(t *testing.T) {
	s := New()
	s.Merge(10, 20)

	if !s.Covered(12, 18) {
		t.Error("expected [12,18] to be covered by [10,20]")
	}
	if s.Covered(15, 25) {
		t.Error("did not expect [15,25] to be covered by [10,20]")
	}
}

func TestGELE(t *testing.T) {
	s := New()
	s.Merge(10, 20)
	s.Merge(30, 40)

	if v, ok := s.GE(25); !ok || v != 30 {
		t.Errorf("GE(25): have (%d,%v), want (30,true)", v, ok)
	}
	if v, ok := s.LE(25); !ok || v != 20 {
		t.Errorf("LE(25): have (%d,%v), want (20,true)", v, ok)
	}
	if _, ok := s.GE(41); ok {
		t.Error("GE(41) should find nothing above the highest range")
	}
}

// TestMaskPulledDisjoint exercises the uniqueness invariant: every block number is
// in exactly one of mask/pulled in steady state.
func TestMaskPulledDisjoint(t *testing.T) {
	mask := New()
	pulled := New()

	mask.Merge(0, 100)
	for n := uint64(0); n <= 100; n += 7 {
		mask.Reduce(n, n)
		pulled.Merge(n, n)
	}
	for n := uint64(0); n <= 100; n += 7 {
		if mask.Contains(n) {
			t.Errorf("block %d should have left mask once pulled", n)
		}
		if !pulled.Contains(n) {
			t.Errorf("block %d should be present in pulled", n)
		}
	}
}
