// Package logtail reads the tail of the CoreGym log file for the Activity
// screen.
//
// # Reading
//
// Read returns the last N lines of a file in one pass using a ring buffer of
// N slots, so memory stays O(N) regardless of file size. A missing file
// yields nil, nil; the log simply has not been written yet.
//
// # Parsing
//
// The client logs zerolog JSON records. Parse decodes the well-known keys
// (time, level, message, error) and keeps the rest as stringified Fields.
// Anything that is not a JSON object is kept verbatim as the message.
//
//	entries, err := logtail.ReadEntries(cfg.LogFile, 200)
//	for _, e := range entries {
//		fmt.Println(logtail.Format(e))
//	}
//
// Format produces a compact one-line rendering; colouring is left to the UI.
package logtail
