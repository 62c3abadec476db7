package repository

import (
	"context"

	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
)

type GetListTemplateFilter struct {
	Type       entity.ChallengeType
	Difficulty entity.ChallengeDifficulty
	ActiveOnly bool
}

type ChallengeTemplateRepository interface {
	Create(ctx context.Context, template *entity.ChallengeTemplate) error
	GetByID(ctx context.Context, id string) (*entity.ChallengeTemplate, error)
	GetList(ctx context.Context, filter GetListTemplateFilter) ([]entity.ChallengeTemplate, error)
	GetAvailable(ctx context.Context, userID string, challengeType entity.ChallengeType) ([]entity.ChallengeTemplate, error)
	Deactivate(ctx context.Context, id string) error
}

type challengeTemplateRepository struct{}

func NewChallengeTemplateRepository() *challengeTemplateRepository {
	return &challengeTemplateRepository{}
}

func (r *challengeTemplateRepository) Create(ctx context.Context, template *entity.ChallengeTemplate) error {
	return xcontext.DB(ctx).Create(template).Error
}

func (r *challengeTemplateRepository) GetByID(ctx context.Context, id string) (*entity.ChallengeTemplate, error) {
	result := &entity.ChallengeTemplate{}
	if err := xcontext.DB(ctx).Where("id=?", id).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *challengeTemplateRepository) GetList(
	ctx context.Context, filter GetListTemplateFilter,
) ([]entity.ChallengeTemplate, error) {
	tx := xcontext.DB(ctx).Model(&entity.ChallengeTemplate{})
	if filter.Type != "" {
		tx.Where("type=?", filter.Type)
	}

	if filter.Difficulty != "" {
		tx.Where("difficulty=?", filter.Difficulty)
	}

	if filter.ActiveOnly {
		tx.Where("is_active=?", true)
	}

	var result []entity.ChallengeTemplate
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// GetAvailable returns active templates of the given type, excluding
// templates the user already holds an active challenge of. This keeps
// the generator from assigning the same template twice.
func (r *challengeTemplateRepository) GetAvailable(
	ctx context.Context, userID string, challengeType entity.ChallengeType,
) ([]entity.ChallengeTemplate, error) {
	activeTemplates := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Select("template_id").
		Where("user_id=? AND status=?", userID, entity.ChallengeActive)

	var result []entity.ChallengeTemplate
	err := xcontext.DB(ctx).
		Where("type=? AND is_active=?", challengeType, true).
		Where("id NOT IN (?)", activeTemplates).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *challengeTemplateRepository) Deactivate(ctx context.Context, id string) error {
	return xcontext.DB(ctx).
		Model(&entity.ChallengeTemplate{}).
		Where("id=?", id).
		Update("is_active", false).Error
}
