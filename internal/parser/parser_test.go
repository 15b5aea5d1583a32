package parser

import (
	"reflect"
	"testing"
)

func TestParse_TitleTextAndLinks(t *testing.T) {
	input := []byte(`<div class="page">
  <h2>Installing  the plugin</h2>
  <p>Use the <a href="#!/install">update site</a> or read the <a href="/#!/faq?x=1">FAQ</a>.</p>
  <p>See <a href="#!/install">again</a> and <a href="https://checkstyle.org">upstream</a>.</p>
  <script>var hidden = "nope";</script>
</div>`)
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Installing the plugin" {
		t.Errorf("title = %q", r.Title)
	}
	if want := []string{"/install", "/faq"}; !reflect.DeepEqual(r.Links, want) {
		t.Errorf("links = %v, want %v", r.Links, want)
	}
	if want := "Installing the plugin Use the update site or read the FAQ . See again and upstream ."; r.Text != want {
		t.Errorf("text = %q", r.Text)
	}
}

func TestParse_NoHeading(t *testing.T) {
	r, err := Parse([]byte("<p>Just text.</p>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "" {
		t.Errorf("title = %q, want empty", r.Title)
	}
	if r.Text != "Just text." {
		t.Errorf("text = %q", r.Text)
	}
}

func TestParse_MalformedMarkupIsTolerated(t *testing.T) {
	r, err := Parse([]byte("<h1>Open <b>bold</h1><p>unclosed"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Open bold" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestFragmentFromHref(t *testing.T) {
	cases := []struct {
		href string
		want string
		ok   bool
	}{
		{"#!/faq", "/faq", true},
		{"/#!/custom-config", "/custom-config", true},
		{"index.html#!/filesets#top", "/filesets", true},
		{"#faq", "", false},
		{"#!faq", "", false},
		{"https://example.org", "", false},
	}
	for _, c := range cases {
		got, ok := FragmentFromHref(c.href)
		if got != c.want || ok != c.ok {
			t.Errorf("FragmentFromHref(%q) = (%q, %v), want (%q, %v)", c.href, got, ok, c.want, c.ok)
		}
	}
}
