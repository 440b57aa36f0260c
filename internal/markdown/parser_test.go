package markdown

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderString(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph", "Built a shop.", "<p>Built a shop.</p>"},
		{"emphasis", "It was **hard**.", "<strong>hard</strong>"},
		{"hard wraps", "line one\nline two", "<br />"},
		{"escapes html", "<script>alert(1)</script>", "<!-- raw HTML omitted -->"},
		{"autolink", "See https://example.com", `href="https://example.com"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.RenderString(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("RenderString(%q) = %q, want it to contain %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConvertReader(t *testing.T) {
	var out bytes.Buffer
	if err := NewParser().ConvertReader(strings.NewReader("# Title"), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "<h1>Title</h1>") {
		t.Errorf("out = %q", out.String())
	}
}
