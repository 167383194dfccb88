// Package services implements the HTTP side of the anime recommendation client.
//
// # Transport
//
// [APIService] performs raw requests against the backend origin and returns an [APIResponse]
// with the status, headers, body and (when the body is JSON) the decoded value.
// Every request:
//   - waits on the optional [rate.Limiter] so bursts of UI actions do not flood the backend
//   - carries an X-Request-ID (v4 UUID) that is also written to the debug log
//   - carries "Authorization: Bearer <token>" whenever the [TokenProvider] yields a token
//
// There are no retries and no timeouts other than the caller's context.
//
// # Typed client
//
// [AnimeService] maps each backend endpoint to a method returning [models] records.
// List payloads are normalized with [models.DecodeAnimeList]; deduplication is left to the caller.
// Login uses the OAuth2 resource-owner password grant, which is exactly the backend's
// form-encoded username/password exchange.
//
// # Error Handling
//
// Non-2xx responses become [*APIError]. Use [IsUnauthorized] and [IsNotFound] to classify and
// [Detail] to extract the backend's human-readable "detail" message.
//   - 401 : errors.Is(err, [shared.ErrUnauthorized])
//   - everything else : errors.Is(err, [shared.ErrAPIRequest])
package services
