package models

import "time"

// Override replaces a Param's value for one country. Country is always
// upper case. There is no foreign key to config_params: deleting a Param
// leaves its overrides in place.
type Override struct {
	ParamID   string    `gorm:"primaryKey;size:36" json:"paramId"`
	Country   string    `gorm:"primaryKey;size:8;index" json:"country"`
	Value     Value     `gorm:"type:text;not null" json:"value"`
	Version   int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Override) TableName() string { return "config_overrides" }
