package domain

import "time"

// Comment is append-only. TodoID is not enforced as a foreign key, so comments
// outlive the todo they point at.
type Comment struct {
	ID        string    `db:"id"`
	TodoID    string    `db:"todoId"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"createdAt"`
}
