// Package optimistic implements the snapshot / apply / commit-or-rollback
// protocol shared by mutations that update local state before the server
// confirms.
package optimistic

// Run executes one optimistic mutation.
//
// snapshot captures the state to restore on failure, apply performs the local
// write, call performs the server round-trip. When call fails, rollback
// restores the snapshot and the error is returned; when it succeeds the
// optimistic state stands until the next authoritative fetch supersedes it.
func Run[S any](snapshot func() S, apply func(), call func() error, rollback func(S)) error {
	before := snapshot()
	apply()
	if err := call(); err != nil {
		rollback(before)
		return err
	}
	return nil
}
