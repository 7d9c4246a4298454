package syncer

import (
	"strings"

	"github.com/example/vaultsync/internal/record"
)

// managedRun locates the managed block in a document: the maximal contiguous
// run of lines matching the record grammar. Returns the half-open line range
// [start, end) and found=false when no line matches. Ties between runs of
// equal length go to the first.
func managedRun(lines []string) (start, end int, found bool) {
	bestStart, bestEnd := 0, 0
	i := 0
	for i < len(lines) {
		if !record.MatchesLine(lines[i]) {
			i++
			continue
		}
		runStart := i
		for i < len(lines) && record.MatchesLine(lines[i]) {
			i++
		}
		if i-runStart > bestEnd-bestStart {
			bestStart, bestEnd = runStart, i
		}
	}
	if bestEnd == bestStart {
		return 0, 0, false
	}
	return bestStart, bestEnd, true
}

// extractManagedBlock returns the managed block's text, or "" when the
// document has none. Front-matter and surrounding prose are not included.
func extractManagedBlock(raw string) string {
	lines := strings.Split(raw, "\n")
	start, end, found := managedRun(lines)
	if !found {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

// spliceManagedBlock replaces the document's managed block with block,
// preserving every non-managed line byte-for-byte, including its position
// relative to the block.
//
// When the document has no managed block yet, the block is appended after
// the existing content, separated by one blank line. An empty block removes
// the managed lines entirely.
func spliceManagedBlock(raw, block string) string {
	blockLines := []string{}
	if block != "" {
		blockLines = strings.Split(strings.TrimSuffix(block, "\n"), "\n")
	}

	if raw == "" {
		if len(blockLines) == 0 {
			return ""
		}
		return strings.Join(blockLines, "\n") + "\n"
	}

	lines := strings.Split(raw, "\n")
	start, end, found := managedRun(lines)
	if !found {
		if len(blockLines) == 0 {
			return raw
		}
		out := raw
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		return out + "\n" + strings.Join(blockLines, "\n") + "\n"
	}

	spliced := make([]string, 0, len(lines)-(end-start)+len(blockLines))
	spliced = append(spliced, lines[:start]...)
	spliced = append(spliced, blockLines...)
	spliced = append(spliced, lines[end:]...)
	return strings.Join(spliced, "\n")
}
