package user

import "errors"

var (
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrInvalidRole             = errors.New("invalid role")
	ErrAdminMasterRequired     = errors.New("only ADMIN_MASTER can manage admin accounts")
)
