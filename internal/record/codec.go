package record

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sigil characters used in checklist lines. These are stable: changing any
// of them silently orphans metadata in every existing vault file.
const (
	sigilHigh     = "\U0001F534"        // 🔴 leading, priority high
	sigilLow      = "\U0001F535"        // 🔵 leading, priority low
	sigilCategory = "\U0001F3F7️" // 🏷️ leading, category label
	sigilDue      = "\U0001F4C5"        // 📅 anywhere, due date
	sigilNote     = "\U0001F4DD"        // 📝 greedy to end of line
)

// decorativeSigils carry no semantics and are stripped on parse.
var decorativeSigils = []string{
	"\U0001F4CE", // 📎 attachment
	"\U0001F4CC", // 📌 pin
	"✅",     // ✅ done marker
	"⏰",     // ⏰ clock
}

var (
	lineRe = regexp.MustCompile(`^([\t ]*)- \[([ xX])\] (.*)$`)
	dueRe  = regexp.MustCompile(sigilDue + `(\d{4}-\d{2}-\d{2})`)
	tagRe  = regexp.MustCompile(`#[A-Za-z0-9_-]+`)
)

// MatchesLine reports whether a single line matches the checklist record
// grammar. Lines that don't match are non-managed content and must be
// preserved verbatim by the syncer.
func MatchesLine(line string) bool {
	return lineRe.MatchString(line)
}

// ParseBlock decodes a managed Markdown block into records of the given type.
//
// Lines that don't match the record grammar are skipped. Indentation deeper
// than the currently open ancestors is clamped, never rejected. Records whose
// text is empty after sigil extraction are dropped silently.
//
// The grammar carries no identity, so each parsed record gets a fresh ID;
// ParentID is derived from the ancestor stack at the record's position.
func ParseBlock(dt DataType, block string) []*Record {
	now := time.Now()
	var records []*Record
	var stack []*Record // stack[n] = last record seen at depth n

	for _, line := range strings.Split(block, "\n") {
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		depth := indentDepth(m[1])
		// Depth cannot skip levels: clamp to the open ancestor count.
		if depth > len(stack) {
			depth = len(stack)
		}

		body, ok := parseBody(m[3])
		if !ok {
			continue
		}

		rec := &Record{
			ID:          uuid.NewString(),
			Type:        dt,
			Text:        body.text,
			Done:        m[2] == "x" || m[2] == "X",
			Priority:    body.priority,
			Category:    body.category,
			Tags:        body.tags,
			DueDate:     body.due,
			Note:        body.note,
			IndentLevel: depth,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if depth > 0 {
			rec.ParentID = stack[depth-1].ID
		}

		// Open this record at its depth and close anything deeper.
		stack = append(stack[:depth], rec)
		records = append(records, rec)
	}

	return records
}

// indentDepth computes the requested nesting depth from the indent run.
// Leading tabs win; the run ends at the first non-tab character. With zero
// leading tabs, two spaces count as one level.
func indentDepth(indent string) int {
	tabs := 0
	for tabs < len(indent) && indent[tabs] == '\t' {
		tabs++
	}
	if tabs > 0 {
		return tabs
	}
	return strings.Count(indent, " ") / 2
}

type bodyFields struct {
	priority Priority
	category string
	tags     []string
	due      *time.Time
	note     string
	text     string
}

// parseBody extracts sigil-encoded fields from a checklist line body.
// Extraction order is fixed: priority, category, due date, tags, note,
// decorative strip, text. Returns ok=false when no text remains.
func parseBody(body string) (bodyFields, bool) {
	f := bodyFields{priority: PriorityNormal, tags: []string{}}
	rest := strings.TrimSpace(body)

	// 1. Priority prefix: at most one, only at the very start.
	switch {
	case strings.HasPrefix(rest, sigilHigh):
		f.priority = PriorityHigh
		rest = strings.TrimLeft(strings.TrimPrefix(rest, sigilHigh), " ")
	case strings.HasPrefix(rest, sigilLow):
		f.priority = PriorityLow
		rest = strings.TrimLeft(strings.TrimPrefix(rest, sigilLow), " ")
	}

	// 2. Category prefix: sigil plus a run of non-whitespace characters.
	// Accept the label sigil with or without the emoji variation selector.
	if strings.HasPrefix(rest, "\U0001F3F7") {
		rest = strings.TrimPrefix(rest, "\U0001F3F7")
		rest = strings.TrimPrefix(rest, "\uFE0F")
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			f.category = rest[:i]
			rest = strings.TrimLeft(rest[i:], " \t")
		} else {
			f.category = rest
			rest = ""
		}
	}

	// 3. Due date: first syntactically and calendar-valid token anywhere.
	for _, loc := range dueRe.FindAllStringSubmatchIndex(rest, -1) {
		raw := rest[loc[2]:loc[3]]
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			continue
		}
		d = Date(d.Year(), d.Month(), d.Day())
		f.due = &d
		rest = rest[:loc[0]] + rest[loc[1]:]
		break
	}

	// 4. Tags: every #word token, first-seen order.
	if tagRe.MatchString(rest) {
		for _, t := range tagRe.FindAllString(rest, -1) {
			f.tags = append(f.tags, strings.TrimPrefix(t, "#"))
		}
		rest = tagRe.ReplaceAllString(rest, "")
	}

	// 5. Note: greedy to end of line, so decorative sigils after the note
	// sigil become part of the note text.
	if i := strings.Index(rest, sigilNote); i >= 0 {
		f.note = strings.TrimSpace(rest[i+len(sigilNote):])
		rest = rest[:i]
	}

	// 6. Remaining decorative sigils have no semantic effect.
	for _, s := range decorativeSigils {
		rest = strings.ReplaceAll(rest, s, "")
	}

	// 7. Whatever remains, whitespace-normalized, is the text.
	f.text = strings.Join(strings.Fields(rest), " ")
	if f.text == "" {
		return bodyFields{}, false
	}
	return f, true
}

// Serialize encodes records as checklist lines, one per record, with sigils
// in the same fixed order the parser extracts them. Serialization is total
// and parse-stable, but not byte-stable against hand-authored input:
// decorative sigils and spacing variants are normalized away.
func Serialize(records []*Record) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(strings.Repeat("\t", r.IndentLevel))
		if r.Done {
			b.WriteString("- [x] ")
		} else {
			b.WriteString("- [ ] ")
		}

		parts := make([]string, 0, 4+len(r.Tags))
		switch r.Priority {
		case PriorityHigh:
			parts = append(parts, sigilHigh)
		case PriorityLow:
			parts = append(parts, sigilLow)
		}
		if r.Category != "" {
			parts = append(parts, sigilCategory+r.Category)
		}
		if r.Text != "" {
			parts = append(parts, r.Text)
		}
		for _, t := range r.Tags {
			parts = append(parts, "#"+t)
		}
		if r.DueDate != nil {
			parts = append(parts, sigilDue+r.DueDate.Format("2006-01-02"))
		}
		if r.Note != "" {
			parts = append(parts, sigilNote+r.Note)
		}

		b.WriteString(strings.Join(parts, " "))
		b.WriteString("\n")
	}
	return b.String()
}
