package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, src string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, src); err != nil {
		t.Fatalf("Render(%q): %v", src, err)
	}
	return buf.String()
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"`code`", "<code>code</code>"},
		{"~~gone~~", "<del>gone</del>"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderHeadingIDs(t *testing.T) {
	got := render(t, "## Start Small\n\ntext")
	if !strings.Contains(got, `<h2 id="start-small">Start Small</h2>`) {
		t.Errorf("heading id missing: %q", got)
	}
}

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{"unordered list", "- one\n- two", []string{"<ul>", "<li>one</li>", "<li>two</li>"}},
		{"ordered list", "1. first\n2. second", []string{"<ol>", "<li>first</li>"}},
		{"blockquote", "> quoted", []string{"<blockquote>", "quoted"}},
		{"fenced code", "```go\nfmt.Println(1)\n```", []string{`<code class="language-go">`, "fmt.Println(1)"}},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<th>a</th>", "<td>2</td>"}},
		{"hard wrap", "line one\nline two", []string{"line one<br"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render(%q) = %q, missing %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestRenderSanitizes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		absent string
	}{
		{"script tag", "hi <script>alert(1)</script>", "<script"},
		{"event handler", `<img src="/uploads/a.png" onerror="alert(1)">`, "onerror"},
		{"javascript link", "[click](javascript:alert(1))", "javascript:"},
		{"iframe", `<iframe src="https://evil.example"></iframe>`, "<iframe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.input)
			if strings.Contains(got, tt.absent) {
				t.Errorf("Render(%q) = %q, should not contain %q", tt.input, got, tt.absent)
			}
		})
	}
}

func TestRenderLinks(t *testing.T) {
	got := render(t, "[site](https://example.com) and [local](/about/)")
	if !strings.Contains(got, `href="https://example.com"`) || !strings.Contains(got, `target="_blank"`) {
		t.Errorf("external link not rendered as expected: %q", got)
	}
	if !strings.Contains(got, `href="/about/"`) {
		t.Errorf("local link missing: %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("# Title").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `<h1 id="title">Title</h1>`) {
		t.Errorf("component output = %q", buf.String())
	}
	if string(HTML("plain")) != "<p>plain</p>\n" {
		t.Errorf("HTML(plain) = %q", HTML("plain"))
	}
}
