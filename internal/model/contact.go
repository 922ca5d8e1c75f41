package model

import "time"

// Contact represents an inquiry submitted via the contact form.
// Inquiries are a queue: admins read them and delete them once handled.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Region    string    `json:"region"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
