package app

import (
	"time"

	"lecturehall/internal/domain"
)

// Wire shapes for relay-originated broadcasts. Every event carries the
// building key so clients can filter in global scope.

type buildingUpdateEvent struct {
	Type     string             `json:"type"`
	Building domain.BuildingKey `json:"building"`
	Lecture  domain.Lecture     `json:"lecture"`
}

type countUpdateEvent struct {
	Type     string             `json:"type"`
	Building domain.BuildingKey `json:"building"`
	Students int                `json:"students"`
}

type boardUpdateEvent struct {
	Type     string             `json:"type"`
	Building domain.BuildingKey `json:"building"`
	Content  string             `json:"content"`
}

type chatMessageEvent struct {
	Type     string             `json:"type"`
	Building domain.BuildingKey `json:"building"`
	Author   string             `json:"author"`
	Text     string             `json:"text"`
	SentAt   time.Time          `json:"sent_at"`
}

type lectureEndedEvent struct {
	Type     string             `json:"type"`
	Building domain.BuildingKey `json:"building"`
}
