package breakdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkInvariant asserts the pager invariants that must hold after every
// operation: at least one page, current index in range.
func checkInvariant(t *testing.T, p *Pager) {
	t.Helper()
	require.GreaterOrEqual(t, p.Len(), 1)
	idx, _ := p.Current()
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx, p.Len())
}

func TestPager_EmptyInputYieldsOnePage(t *testing.T) {
	p := NewPager(nil)
	assert.Equal(t, 1, p.Len())
	idx, content := p.Current()
	assert.Equal(t, 0, idx)
	assert.Equal(t, "", content)
}

func TestPager_Navigation(t *testing.T) {
	p := NewPager([]string{"one", "two", "three"})

	p.Next()
	idx, content := p.Current()
	assert.Equal(t, 1, idx)
	assert.Equal(t, "two", content)

	p.Next()
	p.Next() // no-op at last page
	idx, _ = p.Current()
	assert.Equal(t, 2, idx)

	p.Previous()
	p.Previous()
	p.Previous() // no-op at first page
	idx, _ = p.Current()
	assert.Equal(t, 0, idx)
}

func TestPager_GoToClamps(t *testing.T) {
	p := NewPager([]string{"a", "b"})

	p.GoTo(99)
	idx, _ := p.Current()
	assert.Equal(t, 1, idx)

	p.GoTo(-5)
	idx, _ = p.Current()
	assert.Equal(t, 0, idx)
}

func TestPager_AddPageFocusesNewPage(t *testing.T) {
	p := NewPager([]string{"a"})
	p.AddPage()

	assert.Equal(t, 2, p.Len())
	idx, content := p.Current()
	assert.Equal(t, 1, idx)
	assert.Equal(t, "", content)
}

func TestPager_RemovePage(t *testing.T) {
	t.Run("last remaining page is a no-op", func(t *testing.T) {
		p := NewPager([]string{"only"})
		p.RemovePage(0)
		assert.Equal(t, 1, p.Len())
	})

	t.Run("removing before current decrements current", func(t *testing.T) {
		p := NewPager([]string{"a", "b", "c"})
		p.GoTo(2)
		p.RemovePage(0)
		idx, content := p.Current()
		assert.Equal(t, 1, idx)
		assert.Equal(t, "c", content)
	})

	t.Run("removing current decrements current", func(t *testing.T) {
		p := NewPager([]string{"a", "b", "c"})
		p.GoTo(1)
		p.RemovePage(1)
		idx, content := p.Current()
		assert.Equal(t, 0, idx)
		assert.Equal(t, "a", content)
	})

	t.Run("removing after current leaves current alone", func(t *testing.T) {
		p := NewPager([]string{"a", "b", "c"})
		p.RemovePage(2)
		idx, content := p.Current()
		assert.Equal(t, 0, idx)
		assert.Equal(t, "a", content)
	})
}

// TestPager_InvariantUnderOperationSequences drives the pager through mixed
// operation sequences and checks the structural invariants after each step.
func TestPager_InvariantUnderOperationSequences(t *testing.T) {
	p := NewPager([]string{"start"})

	ops := []func(){
		func() { p.AddPage() },
		func() { p.AddPage() },
		func() { p.GoTo(0) },
		func() { p.RemovePage(1) },
		func() { p.Next() },
		func() { p.RemovePage(0) },
		func() { p.RemovePage(0) }, // down to one page, then no-op
		func() { p.RemovePage(0) },
		func() { p.Previous() },
		func() { p.GoTo(10) },
		func() { p.AddPage() },
		func() { p.RemovePage(5) }, // out of range, no-op
	}

	for _, op := range ops {
		op()
		checkInvariant(t, p)
	}
}

func TestPager_SetContentEditsOnlyCurrentPage(t *testing.T) {
	p := NewPager([]string{"a", "b"})
	p.GoTo(1)
	p.SetContent("edited")

	assert.Equal(t, []string{"a", "edited"}, p.Pages())
}
