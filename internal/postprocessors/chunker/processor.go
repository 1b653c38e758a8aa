// Package chunker provides a recursive, boundary-aware text splitter.
//
// Text is broken at the coarsest separator that yields pieces no longer than
// the chunk size (paragraph, then line, then sentence, then word) and falls
// back to a hard character cut. The pieces are then merged back into chunks
// of at most ChunkSize characters that share up to Overlap characters with
// their neighbour. Separators stay attached to the text they follow, so the
// chunks tile the input and no character is ever dropped.
package chunker

import "github.com/custodia-labs/ragserve/internal/core/ports/driven"

// Ensure Processor implements the interface.
var _ driven.TextSplitter = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// DefaultSeparators lists break points from coarsest to finest.
// The empty separator means a hard cut between characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits text into overlapping chunks.
type Processor struct {
	chunkSize  int
	overlap    int
	separators [][]rune
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy. A hard cut is always
// appended so splitting terminates.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) > 0 {
			p.separators = toRunes(append(append([]string{}, seps...), ""))
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: toRunes(DefaultSeparators),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the maximum chunk length in characters.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the maximum overlap between neighbouring chunks.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split divides text into chunks. Empty text produces no chunks.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	spans := p.spans(runes)

	chunks := make([]string, len(spans))
	for i, sp := range spans {
		chunks[i] = string(runes[sp.start:sp.end])
	}
	return chunks
}

// SplitPages splits every page independently and concatenates the results
// in page order.
func (p *Processor) SplitPages(pages []string) []string {
	var chunks []string //nolint:prealloc // size unknown until split
	for _, page := range pages {
		chunks = append(chunks, p.Split(page)...)
	}
	return chunks
}

// span is a half-open range of rune offsets.
type span struct {
	start int
	end   int
}

func (s span) len() int {
	return s.end - s.start
}

// spans returns the chunk boundaries for runes.
func (p *Processor) spans(runes []rune) []span {
	pieces := p.split(runes, span{0, len(runes)}, p.separators)
	return p.merge(pieces)
}

// split breaks sp into consecutive pieces no longer than the chunk size.
// The pieces exactly tile sp.
func (p *Processor) split(runes []rune, sp span, seps [][]rune) []span {
	if sp.len() <= p.chunkSize {
		return []span{sp}
	}

	sep, finer := pickSeparator(runes[sp.start:sp.end], seps)
	if len(sep) == 0 {
		pieces := make([]span, 0, sp.len())
		for i := sp.start; i < sp.end; i++ {
			pieces = append(pieces, span{i, i + 1})
		}
		return pieces
	}

	var pieces []span
	for _, part := range splitAfter(runes, sp, sep) {
		if part.len() <= p.chunkSize {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, p.split(runes, part, finer)...)
	}
	return pieces
}

// merge packs pieces into chunks of at most chunkSize characters, carrying
// trailing pieces totalling at most overlap characters into the next chunk.
func (p *Processor) merge(pieces []span) []span {
	var chunks []span
	var window []span
	total := 0

	for _, piece := range pieces {
		n := piece.len()
		if total+n > p.chunkSize && len(window) > 0 {
			chunks = append(chunks, span{window[0].start, window[len(window)-1].end})

			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= window[0].len()
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}

	if len(window) > 0 {
		chunks = append(chunks, span{window[0].start, window[len(window)-1].end})
	}
	return chunks
}

// pickSeparator returns the first separator present in text and the
// separators finer than it.
func pickSeparator(text []rune, seps [][]rune) ([]rune, [][]rune) {
	for i, sep := range seps {
		if len(sep) == 0 || indexRunes(text, sep, 0) >= 0 {
			return sep, seps[i+1:]
		}
	}
	return nil, nil
}

// splitAfter cuts sp after every occurrence of sep.
func splitAfter(runes []rune, sp span, sep []rune) []span {
	text := runes[sp.start:sp.end]
	var parts []span
	from := 0
	for {
		i := indexRunes(text, sep, from)
		if i < 0 {
			break
		}
		cut := i + len(sep)
		parts = append(parts, span{sp.start + from, sp.start + cut})
		from = cut
	}
	if from < len(text) {
		parts = append(parts, span{sp.start + from, sp.end})
	}
	return parts
}

// indexRunes returns the index of the first needle in hay at or after from, or -1.
func indexRunes(hay, needle []rune, from int) int {
	for i := from; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func toRunes(seps []string) [][]rune {
	out := make([][]rune, len(seps))
	for i, s := range seps {
		out[i] = []rune(s)
	}
	return out
}
