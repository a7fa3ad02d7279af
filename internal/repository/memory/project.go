package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/project"
)

type proposalRepository struct {
	s *Store
}

func (s *Store) Proposals() project.ProposalRepository {
	return &proposalRepository{s: s}
}

// withProposer fills the joined proposer name. Callers hold s.mu.
func (r *proposalRepository) withProposer(p project.Proposal) project.Proposal {
	if e, ok := r.s.employees[p.ProposedBy]; ok {
		p.ProposedByName = e.Name
	}
	p.EmployeeIDs = append([]string(nil), p.EmployeeIDs...)
	return p
}

func (r *proposalRepository) GetByID(ctx context.Context, id string) (project.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.proposals[id]
	if !ok {
		return project.Proposal{}, project.ErrProposalNotFound
	}
	return r.withProposer(p), nil
}

func (r *proposalRepository) GetByIDForUpdate(ctx context.Context, id string) (project.Proposal, error) {
	return r.GetByID(ctx, id)
}

func (r *proposalRepository) List(ctx context.Context, filter project.ProposalFilter) ([]project.Proposal, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := []project.Proposal{}
	for _, p := range r.s.proposals {
		if !filter.ViewAll && p.ProposedBy != filter.ViewerID && !p.Includes(filter.ViewerID) {
			continue
		}
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		matched = append(matched, r.withProposer(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[j].CreatedAt.Before(matched[i].CreatedAt) })
	return page(matched, filter.Window.Offset, filter.Window.Limit), int64(len(matched)), nil
}

func (r *proposalRepository) Create(ctx context.Context, p project.Proposal) (project.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range p.EmployeeIDs {
		if _, ok := r.s.employees[id]; !ok {
			return project.Proposal{}, project.ErrUnknownMembers
		}
	}
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.proposals[p.ID] = p
	return r.withProposer(p), nil
}

func (r *proposalRepository) UpdateStatus(ctx context.Context, p project.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.proposals[p.ID]
	if !ok {
		return project.ErrProposalNotFound
	}
	current.Status = p.Status
	current.ApprovedBy = p.ApprovedBy
	current.ApprovedAt = p.ApprovedAt
	current.UpdatedAt = time.Now()
	r.s.proposals[p.ID] = current
	return nil
}

func (r *proposalRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.proposals[id]; !ok {
		return project.ErrProposalNotFound
	}
	delete(r.s.proposals, id)
	return nil
}
