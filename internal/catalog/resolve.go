package catalog

import (
	"regexp"
	"strings"

	"shopgifter/internal/model"
)

var (
	// /item-shop/<category>/<slug>, slug ends at the first hyphen, query marker or path separator.
	itemShopPath = regexp.MustCompile(`/item-shop/[^/]+/([^/?\-]+)`)
	// <slug>-<8 hex digit id> trailing segment.
	slugWithID = regexp.MustCompile(`/([a-zA-Z0-9]+)-[a-f0-9]{8}`)
	// "<N> x <name> for <price>" dev names.
	devNameItem = regexp.MustCompile(`(?i)\d+\s*x\s+([^f]+?)\s+for\s+\d+`)
)

// ExtractSlug pulls the item slug out of a storefront URL.
func ExtractSlug(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	if m := itemShopPath.FindStringSubmatch(url); m != nil {
		return strings.ToLower(m[1]), true
	}
	if m := slugWithID.FindStringSubmatch(url); m != nil {
		return strings.ToLower(m[1]), true
	}
	return "", false
}

// ReferenceSlug turns a reference into a lower-case slug. Slug extraction is
// tried first; anything that matches neither URL pattern is used as free text.
func ReferenceSlug(reference string) string {
	reference = strings.TrimSpace(reference)
	if slug, ok := ExtractSlug(reference); ok {
		return slug
	}
	return strings.ToLower(reference)
}

// ResolveByReference returns the first non-track entry whose display name
// contains the reference slug, case-insensitively. Catalog order decides;
// there is no ranking.
func ResolveByReference(entries []model.ShopEntry, reference string) (*model.ShopEntry, string) {
	slug := ReferenceSlug(reference)
	if slug == "" {
		return nil, ""
	}

	for i := range entries {
		if IsSpecialTrack(entries[i]) {
			continue
		}
		name := DisplayName(entries[i])
		if strings.Contains(strings.ToLower(name), slug) {
			return &entries[i], name
		}
	}
	return nil, ""
}

// IsSpecialTrack reports whether an entry belongs to the music track category,
// which is never gifted.
func IsSpecialTrack(e model.ShopEntry) bool {
	if len(e.Tracks) > 0 {
		return true
	}
	if e.Layout == nil {
		return false
	}
	name := strings.ToLower(e.Layout.Name)
	if strings.Contains(name, "jam") && strings.Contains(name, "track") {
		return true
	}
	return strings.HasPrefix(strings.ToUpper(e.Layout.ID), "JT")
}

// DisplayName derives a human-readable name for an entry.
func DisplayName(e model.ShopEntry) string {
	if len(e.BRItems) > 0 {
		return e.BRItems[0].Name
	}
	if e.Bundle != nil && e.Bundle.Name != "" {
		return e.Bundle.Name
	}
	if m := devNameItem.FindStringSubmatch(e.DevName); m != nil {
		return strings.TrimSpace(m[1])
	}
	return e.DevName
}

// Giftable filters entries down to what a bulk run may attempt: no tracks,
// a positive price and a giftable flag. Catalog order is kept.
func Giftable(entries []model.ShopEntry) []model.ShopEntry {
	out := make([]model.ShopEntry, 0, len(entries))
	for _, e := range entries {
		if IsSpecialTrack(e) {
			continue
		}
		if e.EffectivePrice() <= 0 || !e.IsGiftable() {
			continue
		}
		out = append(out, e)
	}
	return out
}
