package patcher

import (
	"bytes"
	"strings"

	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/zerr"
)

// Patcher parses, diffs and reassembles combined artifacts.
type Patcher struct {
	policy domain.PatchPolicy
}

// New creates a Patcher with the given policy.
func New(policy domain.PatchPolicy) *Patcher {
	return &Patcher{policy: policy}
}

// ParseSections splits a combined artifact into its file sections. Scanning is
// line by line: a marker line closes the previous section and opens a new one,
// every other line belongs verbatim to the current section, and the final
// section closes at end of input. A line that looks like a marker but fails to
// parse is cache corruption and aborts the parse.
func (p *Patcher) ParseSections(artifact []byte) ([]domain.Section, error) {
	var sections []domain.Section
	var current *domain.Section

	rest := string(artifact)
	for len(rest) > 0 {
		line := rest
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			line, rest = rest[:nl], rest[nl+1:]
		} else {
			rest = ""
		}

		path, hash, ok, isMarker := ParseMarker(line)
		if isMarker {
			if !ok {
				return nil, zerr.With(zerr.Wrap(domain.ErrMalformedMarker, "failed to parse section marker"), "line", line)
			}
			if current != nil {
				sections = append(sections, *current)
			}
			current = &domain.Section{Path: path, Hash: hash}
			continue
		}
		if current != nil {
			current.Content = append(current.Content, line...)
			current.Content = append(current.Content, '\n')
		}
		// Content before the first marker is ignored.
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections, nil
}

// DetectChanges diffs cached sections against the current file set. A current
// file is unchanged when a cached section has the same path and hash, changed
// when the path matches with a different hash, and new when no cached section
// has the path. Cached sections without a current file are dropped silently.
func (p *Patcher) DetectChanges(cached []domain.Section, current []domain.FileState) domain.ChangeSet {
	byPath := make(map[string]uint64, len(cached))
	for _, s := range cached {
		byPath[s.Path] = s.Hash
	}

	var cs domain.ChangeSet
	for _, f := range current {
		hash, ok := byPath[f.Path]
		switch {
		case !ok:
			cs.New = append(cs.New, f.Path)
		case hash == f.Hash:
			cs.Unchanged = append(cs.Unchanged, f.Path)
		default:
			cs.Changed = append(cs.Changed, f.Path)
		}
	}
	return cs
}

// Assemble builds the combined artifact for the current files in their
// canonical order, taking each section either from fresh (newly compiled,
// emitted with a fresh marker) or from cached (replayed verbatim with its
// original marker). Output order tracks the current file list, never the
// order sections held in the old artifact.
func (p *Patcher) Assemble(current []domain.FileState, cached []domain.Section, fresh map[string][]byte) []byte {
	byPath := make(map[string]domain.Section, len(cached))
	for _, s := range cached {
		byPath[s.Path] = s
	}

	var out bytes.Buffer
	for _, f := range current {
		if content, ok := fresh[f.Path]; ok {
			out.WriteString(FormatMarker(f.Path, f.Hash))
			out.WriteByte('\n')
			out.Write(content)
			if len(content) > 0 && content[len(content)-1] != '\n' {
				out.WriteByte('\n')
			}
			continue
		}
		if s, ok := byPath[f.Path]; ok {
			out.WriteString(FormatMarker(s.Path, s.Hash))
			out.WriteByte('\n')
			out.Write(s.Content)
		}
	}
	return out.Bytes()
}

// ShouldPatch decides between surgical patching and a full rebuild from the
// section counts alone: no usable cache, too many files to recompile, too
// little cache coverage, or too large a changed fraction all force the full
// path.
func (p *Patcher) ShouldPatch(cachedCount, totalCount, changedCount, newCount int) bool {
	if cachedCount == 0 || totalCount == 0 {
		return false
	}
	if changedCount+newCount > p.policy.MaxRecompile {
		return false
	}
	if float64(cachedCount)/float64(totalCount) < p.policy.MinCoverage {
		return false
	}
	if float64(changedCount+newCount)/float64(totalCount) > p.policy.MaxChangedRatio {
		return false
	}
	return true
}
