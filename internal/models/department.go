package models

import "time"

const (
	MinTitleLength = 1
	MaxTitleLength = 200
)

// Department is a node of the organization tree. The parent is referenced by id
// only; children and employees are loaded on demand.
type Department struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:varchar(200);not null" json:"name"`
	ParentID  *uint        `gorm:"index" json:"parent_id"`
	Children  []Department `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Employees []Employee   `gorm:"foreignKey:DepartmentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Department) TableName() string {
	return "departments"
}
