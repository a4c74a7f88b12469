package models

import (
	"time"
)

type Employee struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	CPF       string    `gorm:"not null"                 json:"cpf"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Token     string    `gorm:"unique;not null"          json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

type Submission struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeToken string    `gorm:"index"                    json:"employee_token,omitempty"`
	Name          string    `gorm:"not null"                 json:"name"`
	CPF           string    `gorm:"not null"                 json:"cpf"`
	PhotoPath     string    `gorm:"not null"                 json:"photo_path"`
	StorageFileID string    `json:"storage_file_id,omitempty"`
	ConsentGiven  bool      `gorm:"default:false"            json:"consent_accepted"`
	CreatedAt     time.Time `gorm:"index"                    json:"created_at"`
}
