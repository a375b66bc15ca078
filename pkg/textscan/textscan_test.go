package textscan

import (
	"reflect"
	"testing"
)

func TestHashtags(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"none", "plain text", nil},
		{"single", "learning #golang today", []string{"golang"}},
		{"multiple", "#go #redis #go", []string{"go", "redis"}},
		{"case folded", "#Go and #GO and #go", []string{"go"}},
		{"mid word stops at punctuation", "#go! #web-dev", []string{"go", "web"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Hashtags(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMentions(t *testing.T) {
	got := Mentions("hey @alice and @bob, also @alice")
	want := []string{"alice", "bob"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if m := Mentions("no mentions here"); m != nil {
		t.Fatalf("expected nil, got %v", m)
	}
}

func TestMentions_PreservesCase(t *testing.T) {
	got := Mentions("ping @Alice")
	if !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("got %v", got)
	}
}

func TestLinks(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"none", "nothing to see", nil},
		{"basic", "read https://example.com/post", []string{"https://example.com/post"}},
		{"trailing punctuation", "see https://example.com.", []string{"https://example.com"}},
		{"dedupe", "https://a.io and https://a.io", []string{"https://a.io"}},
		{"http and https", "http://a.io https://b.io", []string{"http://a.io", "https://b.io"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Links(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
