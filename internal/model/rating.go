package model

import "time"

type Rating struct {
	ID         int64     `json:"id"`
	TaskID     string    `json:"task_id"`
	PersonName string    `json:"person_name"`
	Points     int       `json:"points"`
	CreatedAt  time.Time `json:"created_at"`
}
