package user

import "errors"

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrUserNotFound  = errors.New("user not found")
	ErrGetUserByID   = errors.New("failed to get user by id")
)
