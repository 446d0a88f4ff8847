package fsutil

// File and directory permission constants.
// These follow standard Unix permission conventions and are used consistently
// for everything the builder writes into the output directory.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: Default for published files
	FileModeSecure  = 0o640 // -rw-r-----: For config files

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: Default for published directories
	DirModePrivate = 0o700 // drwx------: For scratch directories (owner only)
)
