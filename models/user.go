package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role determines what a user may do. New signups default to RolePoster.
const (
	RoleAdmin  = "admin"
	RolePoster = "poster"
	RoleViewer = "viewer"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
	LastLogin    int64              `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}
