package branches

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/omnimarket/omnimarket/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	mu        sync.Mutex
	repo      Repository
	audit     AuditPort
	validator *validator.Validate
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, validator: validator.New()}
}

func (s *Service) List(ctx context.Context) ([]Branch, error) {
	return s.repo.All(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Branch, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Branch{}, err
	}
	for _, b := range all {
		if b.ID == id {
			return b, nil
		}
	}
	return Branch{}, fmt.Errorf("%w: %s", ErrBranchNotFound, id)
}

func (s *Service) Create(ctx context.Context, branch Branch, actor shared.Actor) (Branch, error) {
	if err := s.validate(branch); err != nil {
		return Branch{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.repo.All(ctx)
	if err != nil {
		return Branch{}, err
	}
	branch.ID = "B-" + strings.ToUpper(uuid.NewString())
	if err := s.repo.SaveAll(ctx, append(all, branch)); err != nil {
		return Branch{}, err
	}
	s.record(ctx, actor, "branch.create", branch.ID)
	return branch, nil
}

func (s *Service) Update(ctx context.Context, branch Branch, actor shared.Actor) error {
	if err := s.validate(branch); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == branch.ID {
			all[i] = branch
			if err := s.repo.SaveAll(ctx, all); err != nil {
				return err
			}
			s.record(ctx, actor, "branch.update", branch.ID)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrBranchNotFound, branch.ID)
}

// Delete removes a branch. Unknown ids are a no-op. Products of the branch are kept.
func (s *Service) Delete(ctx context.Context, id string, actor shared.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	kept := make([]Branch, 0, len(all))
	for _, b := range all {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	if err := s.repo.SaveAll(ctx, kept); err != nil {
		return err
	}
	s.record(ctx, actor, "branch.delete", id)
	return nil
}

func (s *Service) record(ctx context.Context, actor shared.Actor, action, id string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor.Label(), Action: action, Entity: "branch", EntityID: id})
}
