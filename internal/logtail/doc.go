// Package logtail reads the tail of patrol's own log file for the in-app log
// pane.
//
// Read keeps a ring buffer of the last N lines so memory stays bounded by N
// regardless of file size. Parse decodes the zerolog JSON lines written by the
// logging package into an Entry that the UI colors by level; anything that is
// not JSON passes through untouched.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//	if err != nil {
//		return err
//	}
//	for _, e := range logtail.ParseLines(lines) {
//		fmt.Println(e.String())
//	}
package logtail
