package compax

import "fmt"

// BallotID is a unique increasing round identifier.
// It’s convenient to use tuples as ballot numbers.
// To generate it a proposer combines a local increasing counter with its numerical ID: (ProposeNumber, ProposerID).
// To compare ballot tuples, we compare the first component of the tuples and use ProposerID only as a tiebreaker.
type BallotID struct {
	ProposeNumber uint64
	ProposerID    uint64
}

// Compare returns -1, 0 or +1 depending on whether b is less than, equal to or greater than other.
func (b BallotID) Compare(other BallotID) int {
	switch {
	case b.ProposeNumber < other.ProposeNumber:
		return -1
	case b.ProposeNumber > other.ProposeNumber:
		return 1
	case b.ProposerID < other.ProposerID:
		return -1
	case b.ProposerID > other.ProposerID:
		return 1
	}
	return 0
}

// Less reports whether b is ordered strictly before other.
func (b BallotID) Less(other BallotID) bool {
	return b.Compare(other) < 0
}

// Equal reports whether both components of b and other match.
func (b BallotID) Equal(other BallotID) bool {
	return b.Compare(other) == 0
}

// IsZero reports whether b is the zero ballot that acceptors start with.
// No proposer ever issues it.
func (b BallotID) IsZero() bool {
	return b.ProposeNumber == 0 && b.ProposerID == 0
}

func (b BallotID) String() string {
	if b.IsZero() {
		return "ø"
	}
	return fmt.Sprintf("%d/%d", b.ProposeNumber, b.ProposerID)
}
