package model

import "time"

type Household struct {
	ID            int64     `json:"id"`
	AccessKeyHash string    `json:"-"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
}
