package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// RedditAccount holds one linked Reddit identity. A user may link several,
// and the same Reddit username may be linked through different app configs,
// so uniqueness is on (userId, redditUsername, appIdentifier).
type RedditAccount struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	RedditUsername string             `bson:"redditUsername" json:"redditUsername"`
	RedditID       string             `bson:"redditId,omitempty" json:"redditId,omitempty"`
	RefreshToken   string             `bson:"refreshToken" json:"-"`
	Scopes         []string           `bson:"scopes" json:"scopes"`
	AppIdentifier  string             `bson:"appIdentifier" json:"appIdentifier"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	LinkKarma      int                `bson:"linkKarma" json:"linkKarma"`
	CommentKarma   int                `bson:"commentKarma" json:"commentKarma"`
	HasPremium     bool               `bson:"hasPremium" json:"hasPremium"`
	CreatedAt      int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt      int64              `bson:"updatedAt" json:"updatedAt"`
}
