package syncer

import (
	"strings"
	"testing"
)

func TestExtractManagedBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "no managed lines",
			raw:  "# Title\n\nprose only\n",
			want: "",
		},
		{
			name: "block surrounded by prose",
			raw:  "# Title\n- [ ] a\n- [x] b\n\nfooter\n",
			want: "- [ ] a\n- [x] b",
		},
		{
			name: "longest run wins",
			raw:  "- [ ] lone\n\n- [ ] a\n- [ ] b\n",
			want: "- [ ] a\n- [ ] b",
		},
		{
			name: "tie goes to the first run",
			raw:  "- [ ] a\n\n- [ ] b\n",
			want: "- [ ] a",
		},
		{
			name: "whole file is managed",
			raw:  "- [ ] a\n\t- [ ] b\n",
			want: "- [ ] a\n\t- [ ] b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractManagedBlock(tt.raw); got != tt.want {
				t.Errorf("extractManagedBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpliceManagedBlock(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		block string
		want  string
	}{
		{
			name:  "replace block between prose",
			raw:   "# Title\nintro\n- [ ] old\n- [ ] older\nfooter\n",
			block: "- [ ] new\n",
			want:  "# Title\nintro\n- [ ] new\nfooter\n",
		},
		{
			name:  "empty file",
			raw:   "",
			block: "- [ ] a\n",
			want:  "- [ ] a\n",
		},
		{
			name:  "append after prose when no block exists",
			raw:   "# Title\nprose\n",
			block: "- [ ] a\n",
			want:  "# Title\nprose\n\n- [ ] a\n",
		},
		{
			name:  "append adds missing trailing newline first",
			raw:   "prose without newline",
			block: "- [ ] a\n",
			want:  "prose without newline\n\n- [ ] a\n",
		},
		{
			name:  "empty block removes managed lines",
			raw:   "intro\n- [ ] old\noutro\n",
			block: "",
			want:  "intro\noutro\n",
		},
		{
			name:  "empty block on proseless file",
			raw:   "",
			block: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spliceManagedBlock(tt.raw, tt.block); got != tt.want {
				t.Errorf("spliceManagedBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpliceManagedBlock_ProseBytePreservation(t *testing.T) {
	front := "---\ntitle: weekly\ntags: [log]\n---\n\n## Notes\n\nodd   spacing\tand\ttabs\n"
	back := "\n> quote\n\ntrailing prose\n"
	raw := front + "- [ ] old one\n- [x] old two\n" + back

	out := spliceManagedBlock(raw, "- [ ] replacement\n")

	if !strings.HasPrefix(out, front) {
		t.Errorf("front matter not preserved byte-for-byte:\n%q", out)
	}
	if !strings.HasSuffix(out, back) {
		t.Errorf("trailing prose not preserved byte-for-byte:\n%q", out)
	}
	if want := front + "- [ ] replacement\n" + back; out != want {
		t.Errorf("spliced document = %q, want %q", out, want)
	}
}
