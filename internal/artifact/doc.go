// Package artifact materializes submission responses into result sets.
//
// The submission endpoint answers with a JSON object naming one generated
// file per role. The object is checked against the CUE contract in
// contract.cue; anything incomplete or malformed fails the whole operation,
// so a partial ResultSet never exists.
package artifact
