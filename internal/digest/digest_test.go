package digest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func sampleDigest() Digest {
	return Digest{
		UserName:    "Alex",
		GeneratedAt: time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC),
		Sections: []Section{
			{
				Preference: "technology",
				Items: []Item{
					{ID: "a-1", Title: "Chip startup raises round", Summary: "A chip startup raised funding.", Source: "TechWire", URL: "https://example.com/chips"},
				},
			},
			{Preference: "finance", Items: nil},
		},
	}
}

func TestRenderHTML_Content(t *testing.T) {
	html, err := RenderHTML(sampleDigest())
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{
		"Good morning, Alex!",
		"Technology",
		"Chip startup raises round",
		"A chip startup raised funding.",
		"Source: TechWire",
		"August 26, 2026",
		`href="https://example.com/chips"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered digest missing %q", want)
		}
	}
	// Empty sections are omitted entirely.
	if strings.Contains(html, "Finance") {
		t.Error("empty section must not be rendered")
	}
}

func TestRenderHTML_DefaultUserName(t *testing.T) {
	d := sampleDigest()
	d.UserName = ""
	html, err := RenderHTML(d)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "Good morning, there!") {
		t.Error("expected default greeting")
	}
}

func TestRenderHTML_MultibytePreferenceName(t *testing.T) {
	d := sampleDigest()
	d.Sections[0].Preference = "économie"
	html, err := RenderHTML(d)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "Économie") {
		t.Error("expected first rune upper-cased")
	}
	if !utf8.ValidString(html) {
		t.Error("rendered digest contains invalid UTF-8")
	}
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	d := sampleDigest()
	d.Sections[0].Items[0].Title = `<script>alert("x")</script>`
	html, err := RenderHTML(d)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("article content must be HTML-escaped")
	}
}

func TestFileDeliverer_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "digest.html")
	f := NewFileDeliverer(path)
	if f.Name() != "file" {
		t.Errorf("unexpected name %q", f.Name())
	}

	if err := f.Deliver(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Chip startup raises round") {
		t.Error("written file missing article content")
	}
}

func TestDigest_Empty(t *testing.T) {
	d := Digest{Sections: []Section{{Preference: "tech"}}}
	if !d.Empty() {
		t.Error("digest with no items should be empty")
	}
	if d.ItemCount() != 0 {
		t.Errorf("expected 0 items, got %d", d.ItemCount())
	}

	d = sampleDigest()
	if d.Empty() {
		t.Error("digest with items should not be empty")
	}
	if d.ItemCount() != 1 {
		t.Errorf("expected 1 item, got %d", d.ItemCount())
	}
}
