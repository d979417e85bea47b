package models

import "gorm.io/gorm"

// Image A registered 2D slice. Identifier is the external image id that
// annotation collections are keyed by.
type Image struct {
	gorm.Model
	ID         uint   `json:"id" gorm:"primary_key"`
	Identifier string `json:"identifier" gorm:"uniqueIndex"`
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}
