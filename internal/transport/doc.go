// Package transport talks to the processing server.
//
// Two endpoints are used, both relative to one configured base address:
//
//	POST <base>/process            multipart: file_current, file_prev, month
//	GET  <base>/download/<token>   binary artifact
//
// Every failure is reported as *Error so callers can fold transport,
// status, and decoding problems into one failure classification.
package transport
