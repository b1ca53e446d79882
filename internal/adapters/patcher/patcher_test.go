package patcher_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/minic/internal/adapters/patcher"
	"go.trai.ch/minic/internal/core/domain"
)

func newPatcher() *patcher.Patcher {
	return patcher.New(domain.DefaultPatchPolicy())
}

func artifactOf(sections ...domain.Section) []byte {
	var b strings.Builder
	for _, s := range sections {
		b.WriteString(patcher.FormatMarker(s.Path, s.Hash))
		b.WriteByte('\n')
		b.Write(s.Content)
	}
	return []byte(b.String())
}

func TestParseSections(t *testing.T) {
	p := newPatcher()

	input := artifactOf(
		domain.Section{Path: "a.mini", Hash: 0x1, Content: []byte("define i64 @a() {\n}\n")},
		domain.Section{Path: "b.mini", Hash: 0x2, Content: []byte("define i64 @b() {\n}\n")},
	)

	sections, err := p.ParseSections(input)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, "a.mini", sections[0].Path)
	assert.Equal(t, uint64(0x1), sections[0].Hash)
	assert.Equal(t, "define i64 @a() {\n}\n", string(sections[0].Content))
	assert.Equal(t, "b.mini", sections[1].Path)
	assert.Equal(t, "define i64 @b() {\n}\n", string(sections[1].Content))
}

func TestParseSections_Empty(t *testing.T) {
	sections, err := newPatcher().ParseSections(nil)
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestParseSections_ContentBeforeFirstMarkerIgnored(t *testing.T) {
	input := []byte("; stray comment\n" + patcher.FormatMarker("a.mini", 1) + "\nbody\n")

	sections, err := newPatcher().ParseSections(input)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "body\n", string(sections[0].Content))
}

func TestParseSections_MalformedMarker(t *testing.T) {
	input := []byte("; ==== FILE: broken ====\nbody\n")

	_, err := newPatcher().ParseSections(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedMarker))
}

func TestDetectChanges(t *testing.T) {
	p := newPatcher()

	cached := []domain.Section{
		{Path: "a.mini", Hash: 0x111},
		{Path: "b.mini", Hash: 0x222},
		{Path: "gone.mini", Hash: 0x333},
	}
	current := []domain.FileState{
		{Path: "a.mini", Hash: 0x111}, // unchanged
		{Path: "b.mini", Hash: 0x999}, // changed
		{Path: "c.mini", Hash: 0x444}, // new
	}

	cs := p.DetectChanges(cached, current)
	assert.Equal(t, []string{"a.mini"}, cs.Unchanged)
	assert.Equal(t, []string{"b.mini"}, cs.Changed)
	assert.Equal(t, []string{"c.mini"}, cs.New)
}

func TestAssemble_OrderFollowsCurrent(t *testing.T) {
	p := newPatcher()

	cached := []domain.Section{
		{Path: "b.mini", Hash: 0x2, Content: []byte("cached b\n")},
		{Path: "a.mini", Hash: 0x1, Content: []byte("cached a\n")},
	}
	current := []domain.FileState{
		{Path: "a.mini", Hash: 0x1},
		{Path: "b.mini", Hash: 0x2},
	}

	out := p.Assemble(current, cached, nil)

	// Output order is the current file order, not the cached artifact order.
	aIdx := strings.Index(string(out), "cached a")
	bIdx := strings.Index(string(out), "cached b")
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, bIdx, 0)
	assert.Less(t, aIdx, bIdx)
}

func TestAssemble_FreshWinsOverCached(t *testing.T) {
	p := newPatcher()

	cached := []domain.Section{
		{Path: "a.mini", Hash: 0x1, Content: []byte("stale\n")},
	}
	current := []domain.FileState{{Path: "a.mini", Hash: 0x2}}
	fresh := map[string][]byte{"a.mini": []byte("fresh\n")}

	out := string(p.Assemble(current, cached, fresh))
	assert.Contains(t, out, "fresh")
	assert.NotContains(t, out, "stale")
	// The fresh section carries the current hash in its marker.
	assert.Contains(t, out, patcher.FormatMarker("a.mini", 0x2))
}

func TestAssemble_RoundTripsThroughParse(t *testing.T) {
	p := newPatcher()

	current := []domain.FileState{
		{Path: "a.mini", Hash: 0xa},
		{Path: "b.mini", Hash: 0xb},
	}
	fresh := map[string][]byte{
		"a.mini": []byte("define @a\n"),
		"b.mini": []byte("define @b"), // no trailing newline
	}

	out := p.Assemble(current, nil, fresh)
	sections, err := p.ParseSections(out)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "define @a\n", string(sections[0].Content))
	assert.Equal(t, "define @b\n", string(sections[1].Content))
}

func TestShouldPatch(t *testing.T) {
	p := newPatcher()

	tests := []struct {
		name                                 string
		cached, total, changed, newCount int
		want                                 bool
	}{
		{"no cache", 0, 100, 1, 0, false},
		{"empty project", 0, 0, 0, 0, false},
		{"too many to recompile", 100, 200, 60, 41, false},
		{"low coverage", 30, 100, 1, 0, false},
		{"high changed ratio", 100, 100, 51, 0, false},
		{"small change", 100, 100, 2, 0, true},
		{"boundary recompile count", 100, 200, 50, 50, true},
		{"one new file", 99, 100, 0, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ShouldPatch(tt.cached, tt.total, tt.changed, tt.newCount)
			assert.Equal(t, tt.want, got)
		})
	}
}
