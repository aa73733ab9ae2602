// Package violations provides the data model and HTTP client for the remote
// violation collection.
//
// # Overview
//
// The collection is a PostgREST-style endpoint. patrol consumes exactly two
// operations on it:
//
//   - List: GET <base>?select=*&order=timestamp.desc&limit=100
//   - Update: PATCH <base>?id=eq.<id> with body {"status": "<status>"}
//
// Both send the configured key twice, as the apikey header and as a bearer
// token. Update additionally asks for a minimal response body
// (Prefer: return=minimal).
//
// # Client Usage
//
//	client := violations.NewClient(violations.Options{
//		BaseURL: cfg.URL,
//		APIKey:  cfg.APIKey,
//	})
//
//	records, err := client.List(ctx)
//	if err != nil {
//		// errors.Is(err, violations.ErrFetch) == true
//	}
//
//	err = client.UpdateStatus(ctx, "42", violations.StatusReviewed)
//	if err != nil {
//		// errors.Is(err, violations.ErrMutation) == true
//	}
//
// # Error Handling
//
// Every failure of List wraps ErrFetch and every failure of UpdateStatus wraps
// ErrMutation, whatever the cause (bad configuration, transport error, non-2xx
// response, undecodable body). Non-2xx responses additionally carry an
// *APIError with the status code and a truncated body.
//
// NewClient never fails. A missing or malformed collection URL is reported by
// each request instead of at construction time, so a misconfigured client
// behaves like an unreachable service.
//
// # Plate Values
//
// plate_text is either a recognized plate, one of the sentinels
// no_plate_detected and unreadable, or null. Sentinels and null display the
// same way (PlateLabel) but count differently: sentinels are "no plate",
// null is neither "no plate" nor "detected".
package violations
