package project

import "context"

type ProposalRepository interface {
	GetByID(ctx context.Context, id string) (Proposal, error)
	GetByIDForUpdate(ctx context.Context, id string) (Proposal, error)
	List(ctx context.Context, filter ProposalFilter) ([]Proposal, int64, error)
	// Create stores the proposal and its member rows.
	Create(ctx context.Context, p Proposal) (Proposal, error)
	UpdateStatus(ctx context.Context, p Proposal) error
	Delete(ctx context.Context, id string) error
}
