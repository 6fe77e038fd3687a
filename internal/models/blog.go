package models

import "time"

// Blog is a community post stored by the blog service
type Blog struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Creator   string    `db:"creator" json:"creator"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewBlog is the payload accepted when creating a post. ID is optional.
type NewBlog struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Creator string `json:"creator"`
}
