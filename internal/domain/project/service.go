package project

import (
	"context"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type ProposalService interface {
	List(ctx context.Context, actor user.Principal, filter ProposalFilter) (ListProposalResponse, error)
	Get(ctx context.Context, actor user.Principal, id string) (ProposalResponse, error)
	Create(ctx context.Context, actor user.Principal, req CreateProposalRequest) (ProposalResponse, error)
	Approve(ctx context.Context, actor user.Principal, id string) (ProposalResponse, error)
	Delete(ctx context.Context, actor user.Principal, id string) error
}
