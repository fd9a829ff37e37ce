package cli

import (
	"fmt"
	"os"

	"github.com/roach88/recon/internal/store"
)

// openJournal opens an existing journal for reading. flag wins over the
// configured path; a missing file is a command error rather than a fresh
// empty journal.
func openJournal(opts *RootOptions, flag string) (*store.Store, string, error) {
	path := flag
	if path == "" {
		path = opts.Config.Journal
	}
	if path == "" {
		return nil, "", NewExitError(ExitCommandError, "no journal configured: pass --journal or set RECON_JOURNAL")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, path, WrapExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path), err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, path, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return st, path, nil
}
