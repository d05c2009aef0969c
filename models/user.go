package models

import "time"

// Reviewer roles. HOD reviewers perform the L1 stage, AA reviewers the L2
// stage; managers own schedule administration.
const (
	RoleHOD     = "HOD"
	RoleAA      = "AA"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	UserID       int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname    string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname    string     `gorm:"column:user_lname" json:"user_lname"`
	Email        string     `gorm:"column:email;unique" json:"email"`
	Role         string     `gorm:"column:role" json:"role"`
	DepartmentID *int       `gorm:"column:department_id" json:"department_id,omitempty"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

func (User) TableName() string { return "users" }

// FullName joins first and last name for display and email salutations.
func (u *User) FullName() string {
	if u.UserLname == "" {
		return u.UserFname
	}
	return u.UserFname + " " + u.UserLname
}

// IsReviewer reports whether the user can hold a reviewer assignment.
func (u *User) IsReviewer() bool {
	return u.Role == RoleHOD || u.Role == RoleAA
}

type Department struct {
	DepartmentID   int        `gorm:"primaryKey;column:department_id" json:"department_id"`
	DepartmentName string     `gorm:"column:department_name" json:"department_name"`
	FacultyName    string     `gorm:"column:faculty_name" json:"faculty_name"`
	CreateAt       time.Time  `gorm:"column:create_at" json:"create_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Department) TableName() string { return "departments" }
