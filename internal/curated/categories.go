package curated

// Error message templates used across component boundaries, grouped to
// match the kinds enumerated in the error handling design. Callers classify
// an error with Is(err, curated.LoadROMTooLarge) etc rather than matching
// on Error() text.
const (
	// Load failures (cartridge ROM / BIOS / save data)
	LoadROMTooSmall       = "load: rom is too small to contain a header (%d bytes)"
	LoadROMTooLarge       = "load: rom exceeds maximum cartridge size (%d bytes)"
	LoadBIOSSizeMismatch  = "load: bios image must be exactly %d bytes, got %d"
	LoadSaveSizeMismatch  = "load: save data size (%d) does not match detected backup type (%s, wants %d)"
	LoadNoBackupInstalled = "load: cannot load save data before a rom with a detected backup type has been loaded"

	// Save-state failures
	StateBadMagic   = "state: bad magic (expected %#08x, got %#08x)"
	StateBadVersion = "state: unsupported version (expected %d, got %d)"
	StateBadLength  = "state: length mismatch (expected %d, got %d)"

	// Internal, never surfaced as fatal in release builds; logged only
	UnmappedRegion        = "membus: unmapped region at %#08x"
	MalformedInstruction  = "cpu: undefined instruction %#08x at %#08x"
	BackupWriteBeforeInit = "backup: write to backup before type detection discarded"
)
