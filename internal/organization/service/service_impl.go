package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/jobledger/jobledger/internal/clock"
	organizationdomain "github.com/jobledger/jobledger/internal/organization/domain"
	"github.com/jobledger/jobledger/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clk         clock.Clock
	profilerepo repository.Repository[organizationdomain.Profile]
}

func NewService(p ServiceParam) organizationdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		clk:   p.Clock,

		profilerepo: repository.ProvideStore[organizationdomain.Profile](p.DB),
	}
}

func (s *Service) Get(ctx context.Context) (organizationdomain.Profile, error) {
	existing, err := s.profilerepo.FindOne(ctx, &organizationdomain.Profile{})
	if err != nil {
		return organizationdomain.Profile{}, err
	}
	if existing == nil {
		return organizationdomain.Profile{
			BusinessName: organizationdomain.DefaultBusinessName,
		}, nil
	}
	return *existing, nil
}

func (s *Service) Update(ctx context.Context, req organizationdomain.UpdateProfileRequest) (organizationdomain.Profile, error) {
	businessName := strings.TrimSpace(req.BusinessName)
	if businessName == "" {
		return organizationdomain.Profile{}, organizationdomain.ErrInvalidBusinessName
	}

	now := s.clk.Now()
	existing, err := s.profilerepo.FindOne(ctx, &organizationdomain.Profile{})
	if err != nil {
		return organizationdomain.Profile{}, err
	}

	profile := organizationdomain.Profile{
		BusinessName:      businessName,
		OwnerName:         strings.TrimSpace(req.OwnerName),
		Email:             strings.TrimSpace(req.Email),
		Phone:             strings.TrimSpace(req.Phone),
		Address:           strings.TrimSpace(req.Address),
		BankName:          strings.TrimSpace(req.BankName),
		BankAccountName:   strings.TrimSpace(req.BankAccountName),
		BankAccountNumber: strings.TrimSpace(req.BankAccountNumber),
		UpdatedAt:         now,
	}

	if existing == nil {
		profile.ID = s.genID.Generate()
		profile.CreatedAt = now
		if err := s.profilerepo.Create(ctx, &profile); err != nil {
			return organizationdomain.Profile{}, err
		}
		return profile, nil
	}

	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return organizationdomain.Profile{}, err
	}
	return profile, nil
}
