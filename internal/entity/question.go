package entity

import "time"

// Question carries its answers embedded, in submission order.
type Question struct {
	ID        string    `json:"id" bson:"_id"`
	Question  string    `json:"question" bson:"question"`
	User      string    `json:"user" bson:"user"`
	Answers   []Answer  `json:"answers" bson:"answers"`
	Likes     int       `json:"likes" bson:"likes"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Answer struct {
	Text      string    `json:"text" bson:"text"`
	User      string    `json:"user" bson:"user"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
