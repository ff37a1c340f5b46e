// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"math/rand"
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

func TestQueueInMemory(t *testing.T) {
	e := newEngine(t)
	q := newQueue(e, 50, 0, intLess)
	defer q.Close()
	for _, x := range []int{5, 3, 9, 1, 3, 7} {
		q.Push(x)
	}
	require.Equal(t, 6, q.Len())
	var got []int
	for !q.Empty() {
		got = append(got, q.Pop())
	}
	assert.Equal(t, []int{1, 3, 3, 5, 7, 9}, got)
	assert.Zero(t, q.spilled)
}

func TestQueueSpill(t *testing.T) {
	dir := t.TempDir()
	e := newEngine(t, Memory(1), TempDir(dir))
	q := newQueue(e, 50, 0, intLess)
	r := rand.New(rand.NewSource(1))
	want := make([]int, 1000)
	for k := range want {
		want[k] = r.Intn(500)
		q.Push(want[k])
	}
	sort.Ints(want)
	assert.Greater(t, q.spilled, 0)
	require.Equal(t, len(want), q.Len())

	got := make([]int, 0, len(want))
	for !q.Empty() {
		got = append(got, q.Pop())
	}
	assert.Equal(t, want, got)
	q.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "runs left on disk")
}

func TestQueueSpillInterleaved(t *testing.T) {
	e := newEngine(t, Memory(1))
	q := newQueue(e, 50, 0, intLess)
	defer q.Close()
	// pops in between pushes must still return the global minimum
	r := rand.New(rand.NewSource(7))
	var mirror []int
	for k := 0; k < 2000; k++ {
		if len(mirror) > 0 && r.Intn(3) == 0 {
			sort.Ints(mirror)
			require.Equal(t, mirror[0], q.Pop())
			mirror = mirror[1:]
			continue
		}
		x := r.Intn(10000)
		q.Push(x)
		mirror = append(mirror, x)
	}
	assert.Equal(t, len(mirror), q.Len())
}

func TestQueueCapacity(t *testing.T) {
	e := newEngine(t, Memory(1), Spill(false))
	push := func(n int) (err error) {
		defer catch(&err)
		q := newQueue(e, 50, 0, intLess)
		defer q.Close()
		for k := 0; k < n; k++ {
			q.Push(k)
		}
		return nil
	}
	require.NoError(t, push(_MINQUEUEITEMS))
	require.ErrorIs(t, push(_MINQUEUEITEMS+1), ErrQueueCapacity)
}

func TestQueueEmpty(t *testing.T) {
	e := newEngine(t)
	pop := func() (err error) {
		defer catch(&err)
		q := newQueue(e, 50, 0, intLess)
		q.Pop()
		return nil
	}
	require.ErrorIs(t, pop(), ErrExhausted)
}

type levelled struct {
	Level Label
	Value int
}

func levelledQueue(e *Engine) *levelQueue[levelled] {
	return newLevelQueue(e, 50, 0,
		func(a, b levelled) bool {
			if a.Level != b.Level {
				return a.Level < b.Level
			}
			return a.Value < b.Value
		},
		func(x levelled) Label { return x.Level })
}

func TestLevelQueue(t *testing.T) {
	e := newEngine(t)
	q := levelledQueue(e)
	defer q.Close()
	q.setLevel(1)
	q.Push(levelled{3, 1})
	q.Push(levelled{1, 2})
	q.Push(levelled{3, 0})
	q.Push(levelled{1, 1})

	assert.Equal(t, Label(1), q.CurrentLevel())
	require.True(t, q.CanPull())
	assert.Equal(t, levelled{1, 1}, q.Pop())
	assert.Equal(t, levelled{1, 2}, q.Pop())
	assert.False(t, q.CanPull())
	require.True(t, q.HasNextLevel())
	q.SetupNextLevel()
	assert.Equal(t, Label(3), q.CurrentLevel())
	assert.True(t, q.CanPull())
	assert.Equal(t, levelled{3, 0}, q.Pop())
	assert.Equal(t, levelled{3, 1}, q.Pop())
	assert.False(t, q.HasNextLevel())
}

func TestLevelQueueBackward(t *testing.T) {
	e := newEngine(t)
	pull := func() (err error) {
		defer catch(&err)
		q := levelledQueue(e)
		defer q.Close()
		q.setLevel(4)
		q.Push(levelled{2, 0})
		q.CanPull()
		return nil
	}
	require.ErrorIs(t, pull(), ErrInvariant)
}

// TestMergeRule checks on every pair of requests over a small universe that
// the queue chosen by primaryFirst never makes a stream seek past a node that
// the other queue still needs.
func TestMergeRule(t *testing.T) {
	var universe []Ptr
	for l := Label(0); l < 2; l++ {
		for id := ID(0); id < 3; id++ {
			universe = append(universe, NodePtr(l, id))
		}
	}
	universe = append(universe, F, T)
	// a request of the secondary queue always has two targets on the same
	// level, the smallest of them already found
	for _, s1 := range universe {
		for _, s2 := range universe {
			if !s1.IsNode() || !s2.IsNode() || s1.label != s2.label || s1 == s2 {
				continue
			}
			for _, p1 := range universe {
				for _, p2 := range universe {
					if p1.IsTerminal() && p2.IsTerminal() {
						continue
					}
					first := fst(p1, p2)
					if first.IsNode() && first.label != s1.label {
						continue
					}
					seekP, seekS := fst(p1, p2), snd(s1, s2)
					if primaryFirst(p1, p2, s1, s2) {
						assert.True(t, Compare(seekP, seekS) < 0, "primary (%s,%s) before secondary (%s,%s)", p1, p2, s1, s2)
					} else {
						assert.True(t, Compare(seekS, seekP) <= 0, "secondary (%s,%s) before primary (%s,%s)", s1, s2, p1, p2)
					}
				}
			}
		}
	}
	// ties go to the secondary queue
	a, b := NodePtr(0, 1), NodePtr(0, 2)
	assert.False(t, primaryFirst(b, NodePtr(1, 0), a, b))
	assert.True(t, primaryFirst(a, NodePtr(1, 0), a, b))
}

func TestPairOrders(t *testing.T) {
	x, y, z := NodePtr(0, 0), NodePtr(0, 1), NodePtr(1, 0)
	assert.True(t, pairLess(x, y, x, z))
	assert.False(t, pairLess(x, z, y, x))
	assert.True(t, pairLess(x, y, y, x), "first element breaks ties")
	assert.True(t, pairSndLess(y, x, x, z))
	assert.False(t, pairSndLess(x, z, y, x))
}

func TestQueueManyRuns(t *testing.T) {
	dir := t.TempDir()
	e := newEngine(t, Memory(1), TempDir(dir))
	q := newQueue(e, 50, 0, intLess)
	defer q.Close()
	n := 1100 * _MINQUEUEITEMS
	r := rand.New(rand.NewSource(3))
	for k := 0; k < n; k++ {
		q.Push(r.Intn(n))
		if len(q.runs) >= _MAXRUNS {
			t.Fatalf("%d runs on disk after %d pushes", len(q.runs), k+1)
		}
	}
	assert.GreaterOrEqual(t, q.spilled, 1000)
	assert.Greater(t, q.merges, 0)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Less(t, len(entries), _MAXRUNS)

	prev := -1
	for k := 0; k < n; k++ {
		x := q.Pop()
		if x < prev {
			t.Fatalf("pop %d returned %d after %d", k, x, prev)
		}
		prev = x
	}
	assert.True(t, q.Empty())
	q.Close()
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "runs left on disk")
}

func TestQueueMergeInterleaved(t *testing.T) {
	e := newEngine(t, Memory(1))
	q := newQueue(e, 50, 0, intLess)
	defer q.Close()
	r := rand.New(rand.NewSource(11))
	var mirror []int // kept sorted
	for k := 0; k < 400*_MINQUEUEITEMS; k++ {
		if len(mirror) > 0 && r.Intn(4) == 0 {
			require.Equal(t, mirror[0], q.Pop())
			mirror = mirror[1:]
			continue
		}
		x := r.Intn(1 << 20)
		q.Push(x)
		i := sort.SearchInts(mirror, x)
		mirror = append(mirror, 0)
		copy(mirror[i+1:], mirror[i:])
		mirror[i] = x
	}
	assert.Greater(t, q.merges, 0)
	require.Equal(t, len(mirror), q.Len())
	for _, x := range mirror {
		require.Equal(t, x, q.Pop())
	}
}
