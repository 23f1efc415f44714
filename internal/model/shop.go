package model

import "encoding/json"

// ShopEntry is one storefront line item from a catalog snapshot.
// Prices and the giftable flag are pointers so absent values can be told
// apart from explicit zero/false.
type ShopEntry struct {
	OfferID      string            `json:"offerId"`
	DevName      string            `json:"devName"`
	FinalPrice   *int              `json:"finalPrice,omitempty"`
	RegularPrice *int              `json:"regularPrice,omitempty"`
	Giftable     *bool             `json:"giftable,omitempty"`
	BRItems      []ShopItem        `json:"brItems,omitempty"`
	Bundle       *ShopBundle       `json:"bundle,omitempty"`
	Tracks       []json.RawMessage `json:"tracks,omitempty"`
	Layout       *ShopLayout       `json:"layout,omitempty"`
}

// ShopItem is a cosmetic inside an entry.
type ShopItem struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ShopBundle carries the bundle name for multi-item entries.
type ShopBundle struct {
	Name string `json:"name"`
}

// ShopLayout is the storefront section an entry is shown in.
type ShopLayout struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EffectivePrice returns the final price, falling back to the regular price
// when the final price is absent or zero.
func (e ShopEntry) EffectivePrice() int {
	if e.FinalPrice != nil && *e.FinalPrice > 0 {
		return *e.FinalPrice
	}
	if e.RegularPrice != nil {
		return *e.RegularPrice
	}
	return 0
}

// IsGiftable reports the giftable flag, defaulting to true when unspecified.
func (e ShopEntry) IsGiftable() bool {
	if e.Giftable == nil {
		return true
	}
	return *e.Giftable
}
