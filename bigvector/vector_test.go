package bigvector

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglyzov/storeds/store"
)

func newVector(t *testing.T, bucketSize uint64, vals ...uint64) *Vector[uint64] {
	t.Helper()

	v, err := Empty[uint64](bucketSize)
	require.NoError(t, err)
	for _, val := range vals {
		require.NoError(t, v.PushBack(val))
	}
	require.NoError(t, v.Verify())
	return v
}

func seq(from, to uint64) []uint64 {
	out := make([]uint64, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func elems(t *testing.T, v *Vector[uint64]) []uint64 {
	t.Helper()

	out, err := v.ToSlice()
	require.NoError(t, err)
	return out
}

func TestEmpty_ZeroBucketSize(t *testing.T) {
	t.Parallel()

	_, err := Empty[uint64](0)
	assert.True(t, errors.Is(err, ErrZeroBucketSize))

	_, err = Singleton[uint64](1, 0)
	assert.True(t, errors.Is(err, ErrZeroBucketSize))
}

func TestEmpty_RejectsUsedStore(t *testing.T) {
	t.Parallel()

	s := store.NewMap[uint64, []int]()
	require.NoError(t, s.Add(0, []int{1}))

	_, err := Empty[int](4, WithStore[int](s))
	assert.True(t, errors.Is(err, store.ErrNotEmpty))
}

func TestSingleton(t *testing.T) {
	t.Parallel()

	v, err := Singleton[string]("x", 3)
	require.NoError(t, err)

	assert.EqualValues(t, 1, v.Len())
	assert.False(t, v.IsEmpty())
	assert.EqualValues(t, 3, v.BucketSize())

	val, err := v.Borrow(0)
	require.NoError(t, err)
	assert.Equal(t, "x", val)
	require.NoError(t, v.Verify())
}

func TestPushBack_Borrow(t *testing.T) {
	t.Parallel()

	v := newVector(t, 5, seq(0, 100)...)

	assert.EqualValues(t, 100, v.Len())
	assert.EqualValues(t, 20, v.buckets.Len())

	for j := uint64(0); j < 100; j++ {
		val, err := v.Borrow(j)
		require.NoError(t, err)
		assert.Equal(t, j, val)
	}

	_, err := v.Borrow(100)
	assert.True(t, errors.Is(err, ErrIndexOutOfBounds))
	_, err = v.BorrowMut(100)
	assert.True(t, errors.Is(err, ErrIndexOutOfBounds))
}

func TestPopBack(t *testing.T) {
	t.Parallel()

	v := newVector(t, 5, seq(0, 100)...)

	for j := uint64(100); j > 0; j-- {
		want := j - 1

		found, idx := IndexOf(v, want)
		assert.True(t, found)
		assert.Equal(t, want, idx)

		val, err := v.PopBack()
		require.NoError(t, err)
		require.Equal(t, want, val)
		require.NoError(t, v.Verify())
	}

	assert.True(t, v.IsEmpty())
	assert.Zero(t, v.buckets.Len())

	_, err := v.PopBack()
	assert.True(t, errors.Is(err, ErrVectorEmpty))
	assert.NoError(t, v.DestroyEmpty())
}

func TestPushPop_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{0, 1, 4, 5, 6} {
		n := n

		t.Run(fmt.Sprint(n), func(t *testing.T) {
			v := newVector(t, 5, seq(0, n)...)

			require.NoError(t, v.PushBack(42))
			val, err := v.PopBack()
			require.NoError(t, err)

			assert.EqualValues(t, 42, val)
			assert.Equal(t, n, v.Len())
			assert.Equal(t, v.pagesFor(n), v.buckets.Len())
			require.NoError(t, v.Verify())
		})
	}
}

func TestBorrowMut(t *testing.T) {
	t.Parallel()

	v := newVector(t, 3, seq(0, 10)...)

	p, err := v.BorrowMut(7)
	require.NoError(t, err)
	*p = 70

	val, err := v.Borrow(7)
	require.NoError(t, err)
	assert.EqualValues(t, 70, val)
}

func TestSwap(t *testing.T) {
	t.Parallel()

	v := newVector(t, 4, seq(0, 10)...)

	// same page
	require.NoError(t, v.Swap(1, 2))
	// across pages
	require.NoError(t, v.Swap(0, 9))
	// self
	require.NoError(t, v.Swap(5, 5))

	assert.Equal(t, []uint64{9, 2, 1, 3, 4, 5, 6, 7, 8, 0}, elems(t, v))
	require.NoError(t, v.Verify())

	assert.True(t, errors.Is(v.Swap(10, 0), ErrIndexOutOfBounds))
	assert.True(t, errors.Is(v.Swap(0, 10), ErrIndexOutOfBounds))
}

func TestSwapRemove(t *testing.T) {
	t.Parallel()

	v := newVector(t, 4, seq(0, 10)...)

	val, err := v.SwapRemove(9) // last element: plain pop
	require.NoError(t, err)
	assert.EqualValues(t, 9, val)
	assert.Equal(t, seq(0, 9), elems(t, v))

	val, err = v.SwapRemove(2) // last element moves into slot 2
	require.NoError(t, err)
	assert.EqualValues(t, 2, val)
	assert.Equal(t, []uint64{0, 1, 8, 3, 4, 5, 6, 7}, elems(t, v))

	val, err = v.SwapRemove(7) // empties nothing, last page shrinks
	require.NoError(t, err)
	assert.EqualValues(t, 7, val)
	assert.EqualValues(t, 2, v.buckets.Len())

	val, err = v.SwapRemove(0) // 6 moves from page 1 into page 0
	require.NoError(t, err)
	assert.EqualValues(t, 0, val)
	assert.Equal(t, []uint64{6, 1, 8, 3, 4, 5}, elems(t, v))
	require.NoError(t, v.Verify())

	_, err = v.SwapRemove(6)
	assert.True(t, errors.Is(err, ErrIndexOutOfBounds))
}

func TestRemove(t *testing.T) {
	t.Parallel()

	v := newVector(t, 11, seq(0, 101)...)

	for i := uint64(0); i <= 10; i++ {
		idx := 100 - 10*i
		val, err := v.Remove(idx)
		require.NoError(t, err)
		require.Equal(t, idx, val)
		require.NoError(t, v.Verify())
	}

	var want []uint64
	for i := uint64(0); i <= 100; i++ {
		if i%10 != 0 {
			want = append(want, i)
		}
	}
	assert.EqualValues(t, 90, v.Len())
	assert.Equal(t, want, elems(t, v))

	_, err := v.Remove(90)
	assert.True(t, errors.Is(err, ErrIndexOutOfBounds))
}

func TestRemove_Front(t *testing.T) {
	t.Parallel()

	v := newVector(t, 3, seq(0, 7)...)

	for want := uint64(0); want < 7; want++ {
		val, err := v.Remove(0)
		require.NoError(t, err)
		require.Equal(t, want, val)
		require.Equal(t, seq(want+1, 7), elems(t, v))
		require.NoError(t, v.Verify())
	}
	assert.True(t, v.IsEmpty())
}

func TestReverse(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{0, 1, 2, 7, 8, 25} {
		n := n

		t.Run(fmt.Sprint(n), func(t *testing.T) {
			v := newVector(t, 3, seq(0, n)...)
			require.NoError(t, v.Reverse())

			want := make([]uint64, 0, n)
			for i := n; i > 0; i-- {
				want = append(want, i-1)
			}
			assert.Equal(t, want, elems(t, v))
			require.NoError(t, v.Verify())
		})
	}
}

func TestIndexOf_Contains(t *testing.T) {
	t.Parallel()

	v := newVector(t, 4, 5, 6, 7, 5, 9)

	found, idx := IndexOf(v, 5)
	assert.True(t, found)
	assert.EqualValues(t, 0, idx)

	found, idx = IndexOf(v, 9)
	assert.True(t, found)
	assert.EqualValues(t, 4, idx)

	found, idx = IndexOf(v, 1)
	assert.False(t, found)
	assert.Zero(t, idx)

	assert.True(t, Contains(v, 7))
	assert.False(t, Contains(v, 8))

	found, idx = v.IndexOfFunc(func(x uint64) bool { return x > 6 })
	assert.True(t, found)
	assert.EqualValues(t, 2, idx)

	// queries do not mutate
	assert.Equal(t, []uint64{5, 6, 7, 5, 9}, elems(t, v))
}

func TestContains_NeverPopulated(t *testing.T) {
	t.Parallel()

	v, err := Empty[uint64](10)
	require.NoError(t, err)

	assert.False(t, Contains(v, 1))
	assert.NoError(t, v.DestroyEmpty())
}

func TestAppend(t *testing.T) {
	t.Parallel()

	v := newVector(t, 5, seq(0, 7)...)
	other := newVector(t, 7, seq(7, 25)...)

	require.NoError(t, v.Append(other))

	assert.EqualValues(t, 25, v.Len())
	for i := uint64(0); i < 25; i++ {
		val, err := v.Borrow(i)
		require.NoError(t, err)
		assert.Equal(t, i, val)
	}
	require.NoError(t, v.Verify())
	assert.True(t, other.IsEmpty())
}

func TestAppend_PreservesOrder(t *testing.T) {
	t.Parallel()

	fake := gofakeit.New(1234567890)

	for round := 0; round < 200; round++ {
		var (
			lhsLen = uint64(fake.Number(0, 40))
			rhsLen = uint64(fake.Number(0, 40))
			lhs    = newVector(t, uint64(fake.Number(1, 8)))
			rhs    = newVector(t, uint64(fake.Number(1, 8)))
			want   = []uint64{}
		)
		for i := uint64(0); i < lhsLen; i++ {
			val := fake.Uint64()
			require.NoError(t, lhs.PushBack(val))
			want = append(want, val)
		}
		for i := uint64(0); i < rhsLen; i++ {
			val := fake.Uint64()
			require.NoError(t, rhs.PushBack(val))
			want = append(want, val)
		}

		require.NoError(t, lhs.Append(rhs))
		require.NoError(t, lhs.Verify())
		require.Equal(t, want, elems(t, lhs), "round %d: %d+%d", round, lhsLen, rhsLen)
	}
}

func TestAppend_Self(t *testing.T) {
	t.Parallel()

	v := newVector(t, 2, 1, 2, 3)
	assert.Error(t, v.Append(v))
	assert.Equal(t, []uint64{1, 2, 3}, elems(t, v))
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	v := newVector(t, 3, seq(0, 10)...)
	assert.True(t, errors.Is(v.DestroyEmpty(), ErrVectorNotEmpty))

	require.NoError(t, v.Destroy())
	assert.True(t, v.IsEmpty())
	assert.Zero(t, v.buckets.Len())
}

func TestIter(t *testing.T) {
	t.Parallel()

	v := newVector(t, 3, seq(10, 20)...)

	var got []uint64
	assert.True(t, v.Iter(func(i uint64, val uint64) bool {
		assert.Equal(t, i+10, val)
		got = append(got, val)
		return true
	}))
	assert.Equal(t, seq(10, 20), got)

	var count int
	assert.False(t, v.Iter(func(uint64, uint64) bool {
		count++
		return count < 4
	}))
	assert.Equal(t, 4, count)
}

func TestOperations_MatchSliceModel(t *testing.T) {
	t.Parallel()

	const steps = 3000

	var (
		fake  = gofakeit.New(1234567890)
		v     = newVector(t, 4)
		model []uint64
	)

	for step := 0; step < steps; step++ {
		n := uint64(len(model))
		switch op := fake.Number(0, 9); {
		case op <= 3 || n == 0:
			val := fake.Uint64()
			require.NoError(t, v.PushBack(val))
			model = append(model, val)
		case op == 4:
			val, err := v.PopBack()
			require.NoError(t, err)
			require.Equal(t, model[n-1], val)
			model = model[:n-1]
		case op == 5:
			i, j := uint64(fake.Number(0, int(n-1))), uint64(fake.Number(0, int(n-1)))
			require.NoError(t, v.Swap(i, j))
			model[i], model[j] = model[j], model[i]
		case op == 6:
			i := uint64(fake.Number(0, int(n-1)))
			val, err := v.SwapRemove(i)
			require.NoError(t, err)
			require.Equal(t, model[i], val)
			model[i] = model[n-1]
			model = model[:n-1]
		case op == 7:
			i := uint64(fake.Number(0, int(n-1)))
			val, err := v.Remove(i)
			require.NoError(t, err)
			require.Equal(t, model[i], val)
			model = append(model[:i], model[i+1:]...)
		case op == 8:
			i := uint64(fake.Number(0, int(n-1)))
			p, err := v.BorrowMut(i)
			require.NoError(t, err)
			*p = uint64(step)
			model[i] = uint64(step)
		default:
			require.NoError(t, v.Reverse())
			for a, b := 0, len(model)-1; a < b; a, b = a+1, b-1 {
				model[a], model[b] = model[b], model[a]
			}
		}

		require.NoError(t, v.Verify(), "step %d", step)
		require.Equal(t, uint64(len(model)), v.Len())
	}

	if len(model) == 0 {
		model = []uint64{}
	}
	assert.Equal(t, model, elems(t, v))
}

func TestWithStore_Journal(t *testing.T) {
	t.Parallel()

	// any Store works for pages
	j := store.NewJournal[uint64, []uint64](store.NewMap[uint64, []uint64](), nil)
	v, err := Empty[uint64](2, WithStore[uint64](j))
	require.NoError(t, err)

	for i := uint64(0); i < 9; i++ {
		require.NoError(t, v.PushBack(i))
	}
	require.NoError(t, v.Verify())
	require.NoError(t, j.Commit())
	assert.Equal(t, seq(0, 9), elems(t, v))
}

func TestMissingPage(t *testing.T) {
	t.Parallel()

	pages := store.NewMap[uint64, []uint64]()
	v, err := Empty[uint64](2, WithStore[uint64](pages))
	require.NoError(t, err)
	for i := uint64(0); i < 6; i++ {
		require.NoError(t, v.PushBack(i))
	}

	// lost behind the vector's back
	_, err = pages.Remove(1)
	require.NoError(t, err)

	found, _ := IndexOf(v, 4)
	assert.False(t, found)
	assert.False(t, v.Iter(func(uint64, uint64) bool { return true }))

	err = v.Verify()
	require.Error(t, err)
	assert.True(t, errors.HasAssertionFailure(err), "%v", err)
}
