package project

import "errors"

var (
	ErrProposalNotFound     = errors.New("project proposal not found")
	ErrUnknownMembers       = errors.New("one or more employees do not exist")
	ErrProposalNotDeletable = errors.New("only pending proposals can be withdrawn by their author")
	ErrProposalNotVisible   = errors.New("you do not have access to this proposal")
)
