package valueobjects

// VerificationStatus is the state of a single verification attempt.
// Matched, Unmatched and Error are terminal.
type VerificationStatus string

const (
	VerificationStatusPending   VerificationStatus = "pending"
	VerificationStatusScanning  VerificationStatus = "scanning"
	VerificationStatusMatched   VerificationStatus = "matched"
	VerificationStatusUnmatched VerificationStatus = "unmatched"
	VerificationStatusError     VerificationStatus = "error"
)

var verificationTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationStatusPending:  {VerificationStatusScanning, VerificationStatusError},
	VerificationStatusScanning: {VerificationStatusMatched, VerificationStatusUnmatched, VerificationStatusError},
}

func (s VerificationStatus) String() string {
	return string(s)
}

func (s VerificationStatus) IsTerminal() bool {
	switch s {
	case VerificationStatusMatched, VerificationStatusUnmatched, VerificationStatusError:
		return true
	default:
		return false
	}
}

func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	for _, allowed := range verificationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
