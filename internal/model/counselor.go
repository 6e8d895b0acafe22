package model

import "time"

// Column limits of the counselors table, in characters.
const (
	MaxContactLength   = 255
	MaxIntroTextLength = 5000
)

// Counselor extends a User with role=counselor.
type Counselor struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Contact   string    `json:"contact"`
	IntroText string    `json:"introText"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CounselorProfile is the public view of a counselor.
type CounselorProfile struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	IntroText string `json:"introText"`
}
