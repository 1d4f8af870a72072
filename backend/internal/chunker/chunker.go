package chunker

import (
	"fmt"
	"strings"
)

// Chunk is one overlapping window of a source text, tracked by its
// character offset within the original.
type Chunk struct {
	Text        string
	StartIndex  int
	TotalLength int
}

// Splitter performs deterministic, position-aware recursive splitting of
// text into overlapping windows. Natural boundaries (paragraph, then
// line, then word) are preferred before hard character cuts.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// New returns a Splitter with the given window parameters. Zero-value
// fields are replaced with defaults.
func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// span is a half-open [start, end) range into the original text.
type span struct {
	start, end int
}

// Split produces the ordered chunk sequence for text. Chunks are spans
// of the original string, so concatenating them (accounting for the
// overlap) reconstructs full coverage of the input.
func (s *Splitter) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	segments := s.segment(text, 0, len(text), s.separators)
	spans := s.merge(segments)

	chunks := make([]Chunk, 0, len(spans))
	for _, sp := range spans {
		chunkText := text[sp.start:sp.end]
		if strings.TrimSpace(chunkText) == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text:        chunkText,
			StartIndex:  sp.start,
			TotalLength: len(chunkText),
		})
	}
	return chunks
}

// segment recursively cuts [start, end) into pieces no longer than the
// chunk size. Each level splits on the first separator present in the
// piece, retaining the separator at the tail of the preceding piece so
// no character of the original is lost. The empty separator is the
// terminal hard cut.
func (s *Splitter) segment(text string, start, end int, separators []string) []span {
	if end-start <= s.chunkSize {
		return []span{{start, end}}
	}

	sep, rest := pickSeparator(text[start:end], separators)
	if sep == "" {
		var out []span
		for at := start; at < end; at += s.chunkSize {
			out = append(out, span{at, min(at+s.chunkSize, end)})
		}
		return out
	}

	var out []span
	pieceStart := start
	for pieceStart < end {
		idx := strings.Index(text[pieceStart:end], sep)
		pieceEnd := end
		if idx >= 0 {
			pieceEnd = pieceStart + idx + len(sep)
		}
		if pieceEnd-pieceStart > s.chunkSize {
			out = append(out, s.segment(text, pieceStart, pieceEnd, rest)...)
		} else {
			out = append(out, span{pieceStart, pieceEnd})
		}
		pieceStart = pieceEnd
	}
	return out
}

// pickSeparator returns the first separator that occurs in text, plus
// the separators below it for recursion.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// merge greedily combines consecutive segments into windows no longer
// than the chunk size, carrying trailing segments totaling at most the
// configured overlap into the next window.
func (s *Splitter) merge(segments []span) []span {
	var out []span
	var current []span
	curLen := 0

	flush := func() {
		if len(current) > 0 {
			out = append(out, span{current[0].start, current[len(current)-1].end})
		}
	}

	for _, seg := range segments {
		segLen := seg.end - seg.start
		if curLen+segLen > s.chunkSize && len(current) > 0 {
			flush()
			// Back off leading segments until what remains fits the
			// overlap budget alongside the incoming segment.
			for len(current) > 0 && (curLen > s.chunkOverlap || curLen+segLen > s.chunkSize) {
				curLen -= current[0].end - current[0].start
				current = current[1:]
			}
		}
		current = append(current, seg)
		curLen += segLen
	}
	flush()
	return out
}

// ChunkID derives the stable identifier for the i-th description chunk
// of a game.
func ChunkID(appID int64, i int) string {
	return fmt.Sprintf("%d-chunk%d", appID, i)
}
