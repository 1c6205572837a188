package ledger

import "github.com/google/uuid"

const keySeparator = "-"

// LikeID derives the key of the like from liker to liked. It is order sensitive.
func LikeID(likerID, likedID string) string {
	return likerID + keySeparator + likedID
}

// MatchPair returns the two participants in lexicographic order
func MatchPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// MatchID derives the key of the match between a and b. MatchID(a, b) == MatchID(b, a).
func MatchID(a, b string) string {
	first, second := MatchPair(a, b)
	return first + keySeparator + second
}

func newNotificationID() string {
	return uuid.NewString()
}
