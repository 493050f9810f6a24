package domain

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Buildings are the twelve bookable slots on the campus grid.
const BuildingCount = 12

var ErrBadBuilding = errors.New("building must be 1..12")

// BuildingKey addresses one building slot ("1".."12"). It is the stable
// key a lecture session lives under; the lecture itself carries a
// generated ID so a restarted slot is a distinguishable lecture.
type BuildingKey string

func ParseBuildingKey(s string) (BuildingKey, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > BuildingCount {
		return "", ErrBadBuilding
	}
	return BuildingKey(s), nil
}

type LectureID string

type Lecture struct {
	ID           LectureID   `json:"id"`
	Title        string      `json:"title,omitempty"`
	Module       string      `json:"module,omitempty"`
	LecturerName string      `json:"lecturer,omitempty"`
	Building     BuildingKey `json:"building"`
}

func NewLecture(building BuildingKey) *Lecture {
	return &Lecture{ID: LectureID(uuid.NewString()), Building: building}
}

// Merge overlays only the non-empty fields of other, so restarting a
// lecture under the same slot updates metadata without clearing it.
func (l *Lecture) Merge(other Lecture) {
	if other.Title != "" {
		l.Title = other.Title
	}
	if other.Module != "" {
		l.Module = other.Module
	}
	if other.LecturerName != "" {
		l.LecturerName = other.LecturerName
	}
}

type ChatMessage struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}
