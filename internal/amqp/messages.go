package amqp

import (
	"encoding/json"
	"time"
)

// SummaryRefreshMessage asks the worker to rebuild the summaries of one
// user-month. It carries only the period key; the worker reloads the
// transactions from the database so the refresh always sees current state.
type SummaryRefreshMessage struct {
	UserID    string    `json:"userId"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSummaryRefreshMessage(userID string, year, month int) *SummaryRefreshMessage {
	return &SummaryRefreshMessage{
		UserID:    userID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *SummaryRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SummaryRefreshMessageFromJSON(data []byte) (*SummaryRefreshMessage, error) {
	var msg SummaryRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
