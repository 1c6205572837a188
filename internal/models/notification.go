package models

import "time"

// NotificationType identifies the event a notification was emitted for
type NotificationType string

const (
	NotificationTypeLike  NotificationType = "like"
	NotificationTypeMatch NotificationType = "match"
)

// NotificationData carries the denormalized display fields of the other user.
// Like notifications fill the Liker* fields, match notifications the MatchedUser* fields.
type NotificationData struct {
	LikerID                 string `json:"liker_id,omitempty" gorm:"size:128" firestore:"likerId,omitempty" bson:"likerId,omitempty"`
	LikerName               string `json:"liker_name,omitempty" firestore:"likerName,omitempty" bson:"likerName,omitempty"`
	LikerProfileImage       string `json:"liker_profile_image,omitempty" firestore:"likerProfileImage,omitempty" bson:"likerProfileImage,omitempty"`
	MatchedUserID           string `json:"matched_user_id,omitempty" gorm:"size:128" firestore:"matchedUserId,omitempty" bson:"matchedUserId,omitempty"`
	MatchedUserName         string `json:"matched_user_name,omitempty" firestore:"matchedUserName,omitempty" bson:"matchedUserName,omitempty"`
	MatchedUserProfileImage string `json:"matched_user_profile_image,omitempty" firestore:"matchedUserProfileImage,omitempty" bson:"matchedUserProfileImage,omitempty"`
}

// Notification represents a recipient-addressed event record
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;size:36" firestore:"-" bson:"_id"`
	UserID    string           `json:"user_id" gorm:"size:128;not null;index" firestore:"userId" bson:"userId"`
	Type      NotificationType `json:"type" gorm:"size:30;index" firestore:"type" bson:"type"`
	Data      NotificationData `json:"data" gorm:"embedded;embeddedPrefix:data_" firestore:"data" bson:"data"`
	Read      bool             `json:"read" gorm:"default:false;index" firestore:"read" bson:"read"`
	CreatedAt time.Time        `json:"created_at" gorm:"index" firestore:"createdAt" bson:"createdAt"`
}

// ListNotificationsRequest binds the query of the notification listing
type ListNotificationsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
