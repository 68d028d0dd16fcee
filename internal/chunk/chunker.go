package chunk

import "strings"

// Chunk splits text into pieces of at most maxSize characters, preferring
// paragraph boundaries, then sentence boundaries, and splitting on word
// boundaries only when a single sentence exceeds maxSize. The split is
// deterministic and preserves input order.
func Chunk(text string, maxSize int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxSize <= 0 || len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, paragraph := range splitParagraphs(text) {
		if current.Len() > 0 && current.Len()+len(paragraph)+2 > maxSize {
			flush()
		}
		if len(paragraph) <= maxSize {
			appendPiece(&current, paragraph, "\n\n")
			continue
		}

		for _, sentence := range splitSentences(paragraph) {
			if current.Len() > 0 && current.Len()+len(sentence)+1 > maxSize {
				flush()
			}
			if len(sentence) <= maxSize {
				appendPiece(&current, sentence, " ")
				continue
			}

			for _, piece := range splitWords(sentence, maxSize) {
				if current.Len() > 0 && current.Len()+len(piece)+1 > maxSize {
					flush()
				}
				appendPiece(&current, piece, " ")
			}
		}
	}
	flush()

	return chunks
}

// appendPiece joins a piece onto the current chunk with a separator.
func appendPiece(b *strings.Builder, piece, sep string) {
	if b.Len() > 0 {
		b.WriteString(sep)
	}
	b.WriteString(piece)
}

// splitParagraphs splits on blank lines, dropping empty paragraphs.
func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences splits a paragraph after sentence-ending punctuation.
func splitSentences(paragraph string) []string {
	var sentences []string
	start := 0
	runes := []rune(paragraph)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			// Consume trailing punctuation like "?!" or "...".
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
				i++
			}
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				s := strings.TrimSpace(string(runes[start : i+1]))
				if s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// splitWords hard-splits an oversized sentence at word boundaries.
func splitWords(sentence string, maxSize int) []string {
	words := strings.Fields(sentence)
	var pieces []string
	var current strings.Builder
	for _, word := range words {
		if current.Len() > 0 && current.Len()+len(word)+1 > maxSize {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}
