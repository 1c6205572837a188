package models

import "time"

// Match is the materialized state of two users having liked each other.
// User1ID and User2ID are stored in the same sorted order used to build ID.
type Match struct {
	ID        string    `json:"id" gorm:"primaryKey;size:257" firestore:"-" bson:"_id"`
	User1ID   string    `json:"user1_id" gorm:"size:128;not null;index" firestore:"user1Id" bson:"user1Id"`
	User2ID   string    `json:"user2_id" gorm:"size:128;not null;index" firestore:"user2Id" bson:"user2Id"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt" bson:"createdAt"`
}

// OtherUserID returns the participant that is not userID
func (m *Match) OtherUserID(userID string) (string, bool) {
	switch userID {
	case m.User1ID:
		return m.User2ID, true
	case m.User2ID:
		return m.User1ID, true
	}
	return "", false
}
