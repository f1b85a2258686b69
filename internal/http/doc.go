// Package http provides HTTP handlers and middleware for the room reservation API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}. Response:
//     {"token","user"} with the token also surfaced via the `X-Session-Token` header
//     and a `session_token` cookie.
//   - DELETE /sessions: ends the current session taken from the Authorization header
//     or session cookie. Returns 204 No Content and clears the cookie.
//   - GET /sessions/current: restores the user behind the current token.
//   - GET /rooms, GET /rooms/{id}: the static room catalog.
//   - GET /rooms/{id}/slots?date=YYYY-MM-DD: free start times of a room on a day.
//   - GET /reservations[?mine=true], POST /reservations, GET /reservations/{id},
//     PATCH /reservations/{id}, POST /reservations/{id}/cancel: reservation
//     endpoints exchanging the `reservationDTO` payload defined in
//     reservation_handler.go.
//   - GET /metrics: Prometheus metrics. GET /healthz: store reachability.
//
// Every route other than login, metrics and health requires a session.
// Error bodies carry Portuguese messages for display.
package http
