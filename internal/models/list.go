package models

import (
	"bytes"
	"encoding/json"
)

// envelopeKeys are the object fields a list payload may be wrapped in, in lookup order.
var envelopeKeys = []string{"recommendations", "titles", "data", "results", "items"}

// Keyed is implemented by records that carry a deduplication identity.
type Keyed interface {
	Key() string
}

// DecodeAnimeList decodes a list payload into anime summaries.
//
// The payload may be a bare array or an object wrapping the array under one of the known
// envelope keys. Any other payload (an error object, a scalar, null, invalid JSON) yields an
// empty, non-nil slice. Elements that fail to decode are skipped.
func DecodeAnimeList(data []byte) []Anime {
	return decodeList[Anime](data)
}

// DecodeFavoriteList decodes a favorites payload with the same rules as [DecodeAnimeList].
func DecodeFavoriteList(data []byte) []Favorite {
	return decodeList[Favorite](data)
}

func decodeList[T any](data []byte) []T {
	items := listElements(data)
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func listElements(data []byte) []json.RawMessage {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var items []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		return items
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil
		}
		for _, key := range envelopeKeys {
			raw, ok := envelope[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &items); err == nil {
				return items
			}
		}
	}
	return nil
}

// Dedupe returns items in their original order, keeping only the first item for each identity.
//
// Items whose identity is empty are dropped. The result is never nil.
func Dedupe[T Keyed](items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Contains reports whether any item's identity equals key.
func Contains[T Keyed](items []T, key string) bool {
	if key == "" {
		return false
	}
	for _, item := range items {
		if item.Key() == key {
			return true
		}
	}
	return false
}
