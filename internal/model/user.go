package model

import "time"

type User struct {
	ID           string
	Login        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

type UserResponse struct {
	ID        string `json:"id"`
	Login     string `json:"login"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RoleResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type CreateRoleRequest struct {
	Title string `json:"title" binding:"required"`
}
