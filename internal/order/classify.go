package order

// Change classifies an actionable order against its ledger entry.
type Change int

const (
	// Unchanged: the ledger already holds this exact content. No action.
	Unchanged Change = iota

	// New: the order has never been successfully dispatched.
	New

	// Modified: the order was dispatched before with different content.
	Modified
)

// String returns the classification name used in logs and journal rows.
func (c Change) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case New:
		return "new"
	case Modified:
		return "modified"
	}
	return "unknown"
}

// Classify compares the current fingerprint against the previously
// dispatched one. found reports whether a ledger entry exists; absence
// means "never successfully dispatched".
func Classify(previous Fingerprint, found bool, current Fingerprint) Change {
	if !found {
		return New
	}
	if previous.Equal(current) {
		return Unchanged
	}
	return Modified
}
