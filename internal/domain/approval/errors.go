package approval

import "errors"

var (
	ErrSelfApproval      = errors.New("cannot approve or reject your own request")
	ErrAlreadyFinalized  = errors.New("request has already been finalized")
	ErrNotPermitted      = errors.New("your role cannot act on a request at this stage")
	ErrNotDirectReport   = errors.New("managers can only act on requests from direct reports")
	ErrInvalidTransition = errors.New("action is not allowed at this stage")
	ErrInvalidStatus     = errors.New("invalid approval status")
	ErrReasonTooLong     = errors.New("reason must be at most 1000 characters")
)
