package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Bookmark struct {
	ID        bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	PageIndex int           `json:"pageIndex" bson:"pageIndex"`
	Title     string        `json:"title" bson:"title"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}
