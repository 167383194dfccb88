// Package models defines the canonical records of the anime recommendation client.
//
// The backend (and the external catalog it enriches from) returns records in several shapes:
// an id under either "anime_id" or "mal_id", images either flat or nested under "images.jpg",
// genres as an array or a comma-separated string, and lists either bare or wrapped in an envelope.
// All of that is resolved once, in the JSON decoders of this package, so the rest of the module
// only ever sees:
//   - [Anime] : a summary with a single identity ([Anime.Key])
//   - [Favorite] : a favorited anime owned by the signed-in user
//   - [User] : the signed-in identity
//   - [AnimeDetail] : one anime plus titles similar to it
//
// [Dedupe] keeps the first record per identity and [Filter] narrows and orders lists for display.
package models
