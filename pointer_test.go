// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"sort"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPtrOrdering(t *testing.T) {
	ordered := []Ptr{
		NodePtr(0, 0),
		NodePtr(0, 1),
		NodePtr(0, MaxID),
		NodePtr(1, 0),
		NodePtr(MaxLabel, 7),
		F,
		T,
		NilPtr,
	}
	for i := range ordered {
		for j := range ordered {
			want := 0
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			assert.Equal(t, want, Compare(ordered[i], ordered[j]), "Compare(%s, %s)", ordered[i], ordered[j])
		}
	}
	shuffled := []Ptr{T, NodePtr(1, 0), NilPtr, NodePtr(0, 1), F, NodePtr(MaxLabel, 7), NodePtr(0, MaxID), NodePtr(0, 0)}
	sort.Slice(shuffled, func(i, j int) bool { return shuffled[i].Less(shuffled[j]) })
	if diff := cmp.Diff(ordered, shuffled, ptrComparer); diff != "" {
		t.Errorf("sorted pointers mismatch (-want +got):\n%s", diff)
	}
}

func TestPtrAccessors(t *testing.T) {
	p := NodePtr(3, 42)
	assert.True(t, p.IsNode())
	assert.False(t, p.IsTerminal())
	assert.Equal(t, Label(3), p.Label())
	assert.Equal(t, ID(42), p.ID())
	assert.Equal(t, p, p.Negate())
	assert.Equal(t, T, F.Negate())
	assert.Equal(t, F, T.Negate())
	assert.True(t, T.Value())
	assert.False(t, F.Value())
	assert.True(t, NilPtr.IsNil())
	assert.Equal(t, "3:42", p.String())
	assert.Equal(t, "T", T.String())
	assert.Equal(t, "F", F.String())
}

func TestPtrContract(t *testing.T) {
	label := func(p Ptr) (err error) {
		defer catch(&err)
		p.Label()
		return nil
	}
	require.ErrorIs(t, label(T), ErrTerminalLabel)
	require.ErrorIs(t, label(NilPtr), ErrTerminalLabel)
	require.NoError(t, label(NodePtr(2, 0)))

	value := func(p Ptr) (err error) {
		defer catch(&err)
		p.Value()
		return nil
	}
	require.ErrorIs(t, value(NodePtr(2, 0)), ErrInvariant)

	mk := func(l Label, id ID) (err error) {
		defer catch(&err)
		NodePtr(l, id)
		return nil
	}
	require.ErrorIs(t, mk(0, MaxID+1), ErrIDSpace)
	require.ErrorIs(t, mk(MaxLabel+1, 0), ErrInvariant)
}

func TestFstSnd(t *testing.T) {
	var tests = []struct {
		a, b     Ptr
		fst, snd Ptr
	}{
		{NodePtr(0, 1), NodePtr(1, 0), NodePtr(0, 1), NodePtr(1, 0)},
		{NodePtr(1, 0), NodePtr(0, 1), NodePtr(0, 1), NodePtr(1, 0)},
		{NodePtr(2, 3), T, NodePtr(2, 3), T},
		{T, F, F, T},
		{NodePtr(1, 1), NodePtr(1, 1), NodePtr(1, 1), NodePtr(1, 1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.fst, fst(tt.a, tt.b), "fst(%s, %s)", tt.a, tt.b)
		assert.Equal(t, tt.snd, snd(tt.a, tt.b), "snd(%s, %s)", tt.a, tt.b)
	}
}

func TestParsePtr(t *testing.T) {
	var tests = []struct {
		in   string
		want Ptr
		err  bool
	}{
		{"T", T, false},
		{"false", F, false},
		{" 4:17 ", NodePtr(4, 17), false},
		{"nil", NilPtr, false},
		{"4", NilPtr, true},
		{"x:1", NilPtr, true},
		{"16777216:0", NilPtr, true},
	}
	for _, tt := range tests {
		p, err := ParsePtr(tt.in)
		if tt.err {
			assert.Error(t, err, "ParsePtr(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParsePtr(%q)", tt.in)
		assert.Equal(t, tt.want, p, "ParsePtr(%q)", tt.in)
		if !p.IsNil() {
			back, err := ParsePtr(p.String())
			require.NoError(t, err)
			assert.Equal(t, p, back)
		}
	}
}

func TestPtrCBOR(t *testing.T) {
	in := Node{UID: NodePtr(5, 9), Low: F, High: NodePtr(MaxLabel, MaxID)}
	data, err := cbor.Marshal(nodeRecord{UID: in.UID, Low: in.Low, High: in.High})
	require.NoError(t, err)
	var out nodeRecord
	require.NoError(t, cbor.Unmarshal(data, &out))
	assert.Equal(t, in, Node{UID: out.UID, Low: out.Low, High: out.High})

	bad, err := cbor.Marshal([3]uint64{9, 0, 0})
	require.NoError(t, err)
	var p Ptr
	assert.Error(t, cbor.Unmarshal(bad, &p))
}
