package sync

// shouldUpload decides whether a local file needs to be (re)added to the
// store, given what the remote listing reported for its name. Two
// mutually exclusive modes:
//
//   - size-diff (no SyncFrom): upload when the name is new remotely or
//     the recorded size differs from the local size. Equal-size content
//     edits go undetected; that is a documented limitation of this mode,
//     not a bug to fix.
//   - change-time (SyncFrom set): upload when the name is new remotely
//     or the file's ctime is strictly after the threshold. Size is not
//     consulted; a file whose ctime never advanced past the threshold is
//     missed, in exchange for skipping the size comparison entirely.
func shouldUpload(cfg *Config, entry *localEntry, remote *RemoteEntry) bool {
	if remote == nil {
		return true
	}
	if cfg.SyncFrom != nil {
		return entry.ChangeTime.After(*cfg.SyncFrom)
	}
	return remote.Size != entry.Size
}
