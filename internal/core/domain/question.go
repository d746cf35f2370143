package domain

import "time"

// Answer is a reply embedded in a question document.
type Answer struct {
	ID        string    `json:"id" bson:"id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Body      string    `json:"body" bson:"body"`
	Accepted  bool      `json:"is_accepted" bson:"is_accepted"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Question is the Q&A forum aggregate root.
type Question struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	SubjectID string    `json:"subject_id,omitempty" bson:"subject_id,omitempty"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Tags      []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	Answers   []Answer  `json:"answers" bson:"answers"`
	Views     int64     `json:"views" bson:"views"`
	Active    bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Answer returns the embedded answer with the given id, or nil.
func (q *Question) Answer(answerID string) *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			return &q.Answers[i]
		}
	}
	return nil
}
