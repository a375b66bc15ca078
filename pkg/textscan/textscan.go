// Package textscan extracts hashtags, mentions and links from post
// content.
package textscan

import (
	"regexp"
	"strings"
)

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
	urlPattern     = regexp.MustCompile(`https?://[^\s<>"]+`)
)

// Hashtags returns the deduplicated, lowercased hashtag names in text,
// without the leading '#', in order of first appearance.
func Hashtags(text string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tag := strings.ToLower(m[1])
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// Mentions returns the deduplicated mention tokens in text, without
// the leading '@', in order of first appearance. Case is preserved
// because mention tokens may be ids.
func Mentions(text string) []string {
	var mentions []string
	seen := make(map[string]bool)
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		mentions = append(mentions, m[1])
	}
	return mentions
}

// Links returns the deduplicated http(s) URLs in text, with trailing
// punctuation stripped.
func Links(text string) []string {
	var links []string
	seen := make(map[string]bool)
	for _, raw := range urlPattern.FindAllString(text, -1) {
		link := strings.TrimRight(raw, ".,!?;:)")
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}
