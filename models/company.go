package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is the tenant boundary. Every other document carries a reference
// back to its company, and no request may cross it.
type Company struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Location   string             `bson:"location" json:"location"`
	Industry   string             `bson:"industry" json:"industry"`
	AdminName  string             `bson:"adminName" json:"adminName"`
	AdminEmail string             `bson:"adminEmail" json:"adminEmail"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
