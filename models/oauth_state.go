package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// OAuthState is a short-lived CSRF token created when a connect flow starts.
// The callback looks it up to recover which user (and which app config)
// initiated the flow. States expire after OAuthStateTTLMinutes.
type OAuthState struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	State         string             `bson:"state" json:"state"`
	Provider      string             `bson:"provider" json:"provider"`
	AppIdentifier string             `bson:"appIdentifier" json:"appIdentifier"`
	CreatedAt     int64              `bson:"createdAt" json:"createdAt"`
}

const OAuthStateTTLMinutes = 10
