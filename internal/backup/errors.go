package backup

import "errors"

// Not-found taxonomy for restore and delete. The two cases are deliberately
// distinct: a missing descriptor means the caller asked for an unknown
// backup, a missing archive file means the catalog and the archive have
// diverged and must not be silently ignored.
var (
	// ErrBackupNotFound indicates no catalog descriptor exists for the
	// requested backup ID.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrArchiveFileMissing indicates a descriptor exists but its backing
	// snapshot file is gone from the archive.
	ErrArchiveFileMissing = errors.New("backup file not found")

	// ErrPartialRestore indicates the records document was overwritten but
	// the categories document was not. Live state is inconsistent; re-running
	// the restore with the same backup ID converges.
	ErrPartialRestore = errors.New("partial restore: records were replaced but categories were not")
)
