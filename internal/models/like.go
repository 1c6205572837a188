package models

import "time"

// Like represents one user's interest in another. The ID is always
// LikerID + "-" + LikedID so a pair can only ever hold one like per direction.
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey;size:257" firestore:"-" bson:"_id"`
	LikerID   string    `json:"liker_id" gorm:"size:128;not null;index" firestore:"likerId" bson:"likerId"`
	LikedID   string    `json:"liked_id" gorm:"size:128;not null;index" firestore:"likedId" bson:"likedId"`
	CreatedAt time.Time `json:"created_at" gorm:"index" firestore:"createdAt" bson:"createdAt"`
}

// LikeResult is returned after recording a like
type LikeResult struct {
	Like    *Like `json:"like"`
	Matched bool  `json:"matched"`
}
