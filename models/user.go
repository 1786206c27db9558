package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"password,omitempty"`
	Role     Role               `bson:"role" json:"role"`
	Company  primitive.ObjectID `bson:"company" json:"company"`
}

// Actor identifies the authenticated caller inside service methods.
type Actor struct {
	ID      primitive.ObjectID
	Role    Role
	Company primitive.ObjectID
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
