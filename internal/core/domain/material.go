package domain

import "time"

// MaterialType classifies an uploaded study material.
type MaterialType string

const (
	MaterialNotes         MaterialType = "notes"
	MaterialAssignment    MaterialType = "assignment"
	MaterialQuestionPaper MaterialType = "question-paper"
	MaterialPresentation  MaterialType = "presentation"
	MaterialBook          MaterialType = "book"
	MaterialOther         MaterialType = "other"
)

// Valid reports whether t is a known material type.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialNotes, MaterialAssignment, MaterialQuestionPaper,
		MaterialPresentation, MaterialBook, MaterialOther:
		return true
	}
	return false
}

// Difficulty levels for a material.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// StoredFile describes the uploaded file as persisted by the file store.
type StoredFile struct {
	Key          string `json:"key" bson:"key"`
	URL          string `json:"url" bson:"url"`
	OriginalName string `json:"original_name" bson:"original_name"`
	Size         int64  `json:"size" bson:"size"`
	MimeType     string `json:"mime_type" bson:"mime_type"`
}

// Like records a single user's like with its timestamp.
type Like struct {
	UserID  string    `json:"user_id" bson:"user_id"`
	LikedAt time.Time `json:"liked_at" bson:"liked_at"`
}

// Download records that a user fetched the material at least once.
type Download struct {
	UserID       string    `json:"user_id" bson:"user_id"`
	DownloadedAt time.Time `json:"downloaded_at" bson:"downloaded_at"`
}

// Material is the study-material aggregate root.
type Material struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	Title        string       `json:"title" bson:"title"`
	Description  string       `json:"description" bson:"description"`
	SubjectID    string       `json:"subject_id" bson:"subject_id"`
	UploadedBy   string       `json:"uploaded_by" bson:"uploaded_by"`
	MaterialType MaterialType `json:"material_type" bson:"material_type"`
	File         StoredFile   `json:"file" bson:"file"`
	Tags         []string     `json:"tags,omitempty" bson:"tags,omitempty"`
	Difficulty   string       `json:"difficulty" bson:"difficulty"`
	AcademicYear string       `json:"academic_year" bson:"academic_year"`
	Semester     int          `json:"semester" bson:"semester"`
	Likes        []Like       `json:"likes" bson:"likes"`
	Downloads    []Download   `json:"downloads" bson:"downloads"`
	Views        int64        `json:"views" bson:"views"`
	Approved     bool         `json:"is_approved" bson:"is_approved"`
	Active       bool         `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" bson:"updated_at"`
}

// LikedBy reports whether userID already likes the material.
func (m *Material) LikedBy(userID string) bool {
	for _, l := range m.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}
