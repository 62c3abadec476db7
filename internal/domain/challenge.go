package domain

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/dateutil"
	"github.com/stunity/backend/pkg/enum"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	dailyChallengeQuota  = 3
	weeklyChallengeQuota = 5

	dailyStreakBonus  = 50
	weeklyStreakBonus = 1000

	challengeRewardSource = "challenge"
)

// Coin rewards for templates created without an explicit one.
var fallbackCoinReward = map[entity.ChallengeDifficulty]int64{
	entity.ChallengeEasy:   100,
	entity.ChallengeMedium: 250,
	entity.ChallengeHard:   500,
}

type ChallengeDomain interface {
	CreateTemplate(ctx context.Context, req *model.CreateChallengeTemplateRequest) (*model.CreateChallengeTemplateResponse, error)
	DeactivateTemplate(ctx context.Context, req *model.DeactivateChallengeTemplateRequest) (*model.DeactivateChallengeTemplateResponse, error)
	GetTemplates(ctx context.Context, req *model.GetChallengeTemplatesRequest) (*model.GetChallengeTemplatesResponse, error)
	GenerateDaily(ctx context.Context, req *model.GenerateDailyChallengesRequest) (*model.GenerateDailyChallengesResponse, error)
	GenerateWeekly(ctx context.Context, req *model.GenerateWeeklyChallengesRequest) (*model.GenerateWeeklyChallengesResponse, error)
	UpdateProgress(ctx context.Context, req *model.UpdateChallengeProgressRequest) (*model.UpdateChallengeProgressResponse, error)
	GetMyChallenges(ctx context.Context, req *model.GetMyChallengesRequest) (*model.GetMyChallengesResponse, error)
	Expire(ctx context.Context, req *model.ExpireChallengesRequest) (*model.ExpireChallengesResponse, error)
}

type challengeDomain struct {
	challengeRepo repository.ChallengeRepository
	templateRepo  repository.ChallengeTemplateRepository
	userStatsRepo repository.UserStatsRepository
	ledger        ledger.Ledger
}

func NewChallengeDomain(
	challengeRepo repository.ChallengeRepository,
	templateRepo repository.ChallengeTemplateRepository,
	userStatsRepo repository.UserStatsRepository,
	ledger ledger.Ledger,
) *challengeDomain {
	return &challengeDomain{
		challengeRepo: challengeRepo,
		templateRepo:  templateRepo,
		userStatsRepo: userStatsRepo,
		ledger:        ledger,
	}
}

func (d *challengeDomain) CreateTemplate(
	ctx context.Context, req *model.CreateChallengeTemplateRequest,
) (*model.CreateChallengeTemplateResponse, error) {
	challengeType, err := enum.ToEnum[entity.ChallengeType](req.Type)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid challenge type: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid challenge type %s", req.Type)
	}

	difficulty, err := enum.ToEnum[entity.ChallengeDifficulty](req.Difficulty)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid difficulty: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid difficulty %s", req.Difficulty)
	}

	if req.TargetValue <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Target value must be positive")
	}

	if req.Weight < 0 {
		return nil, errorx.New(errorx.BadRequest, "Weight must not be negative")
	}

	template := &entity.ChallengeTemplate{
		Base:        entity.Base{ID: uuid.NewString()},
		Title:       req.Title,
		Description: req.Description,
		Type:        challengeType,
		Difficulty:  difficulty,
		TargetValue: req.TargetValue,
		XpReward:    req.XpReward,
		CoinReward:  req.CoinReward,
		Weight:      req.Weight,
		IsActive:    true,
	}

	if err := d.templateRepo.Create(ctx, template); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create challenge template: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateChallengeTemplateResponse{ID: template.ID}, nil
}

// DeactivateTemplate retires a template from future sampling. Existing
// challenge instances keep their definition.
func (d *challengeDomain) DeactivateTemplate(
	ctx context.Context, req *model.DeactivateChallengeTemplateRequest,
) (*model.DeactivateChallengeTemplateResponse, error) {
	if _, err := d.templateRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found challenge template")
		}

		xcontext.Logger(ctx).Errorf("Cannot get challenge template: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.templateRepo.Deactivate(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deactivate challenge template: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeactivateChallengeTemplateResponse{}, nil
}

func (d *challengeDomain) GetTemplates(
	ctx context.Context, req *model.GetChallengeTemplatesRequest,
) (*model.GetChallengeTemplatesResponse, error) {
	filter := repository.GetListTemplateFilter{ActiveOnly: req.ActiveOnly}
	if req.Type != "" {
		challengeType, err := enum.ToEnum[entity.ChallengeType](req.Type)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid challenge type %s", req.Type)
		}

		filter.Type = challengeType
	}

	if req.Difficulty != "" {
		difficulty, err := enum.ToEnum[entity.ChallengeDifficulty](req.Difficulty)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid difficulty %s", req.Difficulty)
		}

		filter.Difficulty = difficulty
	}

	templates, err := d.templateRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get challenge templates: %v", err)
		return nil, errorx.Unknown
	}

	result := make([]model.ChallengeTemplate, 0, len(templates))
	for i := range templates {
		result = append(result, convertChallengeTemplate(&templates[i]))
	}

	return &model.GetChallengeTemplatesResponse{Templates: result}, nil
}

func (d *challengeDomain) GenerateDaily(
	ctx context.Context, req *model.GenerateDailyChallengesRequest,
) (*model.GenerateDailyChallengesResponse, error) {
	challenges, err := d.generate(
		ctx, entity.ChallengeDaily, dailyChallengeQuota, dateutil.NextDay(time.Now()))
	if err != nil {
		return nil, err
	}

	return &model.GenerateDailyChallengesResponse{Challenges: challenges}, nil
}

func (d *challengeDomain) GenerateWeekly(
	ctx context.Context, req *model.GenerateWeeklyChallengesRequest,
) (*model.GenerateWeeklyChallengesResponse, error) {
	challenges, err := d.generate(
		ctx, entity.ChallengeWeekly, weeklyChallengeQuota, dateutil.NextMonday(time.Now()))
	if err != nil {
		return nil, err
	}

	return &model.GenerateWeeklyChallengesResponse{Challenges: challenges}, nil
}

// generate tops the user up to the quota of active challenges of the
// given type. Calling it again in the same period is a no-op once the
// quota is reached.
func (d *challengeDomain) generate(
	ctx context.Context,
	challengeType entity.ChallengeType,
	quota int,
	expiresAt time.Time,
) ([]model.Challenge, error) {
	userID := xcontext.RequestUserID(ctx)
	active, err := d.challengeRepo.CountActive(ctx, userID, challengeType)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count active challenges: %v", err)
		return nil, errorx.Unknown
	}

	shortfall := quota - int(active)
	if shortfall <= 0 {
		return []model.Challenge{}, nil
	}

	templates, err := d.templateRepo.GetAvailable(ctx, userID, challengeType)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get available templates: %v", err)
		return nil, errorx.Unknown
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selected := selectWeighted(templates, shortfall, rng)

	result := make([]model.Challenge, 0, len(selected))
	for i := range selected {
		challenge := &entity.Challenge{
			Base:       entity.Base{ID: uuid.NewString()},
			UserID:     userID,
			TemplateID: selected[i].ID,
			Template:   selected[i],
			Progress:   0,
			Status:     entity.ChallengeActive,
			ExpiresAt:  expiresAt,
		}

		if err := d.challengeRepo.Create(ctx, challenge); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create challenge: %v", err)
			return nil, errorx.Unknown
		}

		result = append(result, convertChallenge(challenge))
	}

	return result, nil
}

// selectWeighted samples up to count distinct templates by roulette
// selection. Zero-weight templates are excluded from the pool.
func selectWeighted(
	templates []entity.ChallengeTemplate, count int, rng *rand.Rand,
) []entity.ChallengeTemplate {
	pool := make([]entity.ChallengeTemplate, 0, len(templates))
	for i := range templates {
		if templates[i].Weight > 0 {
			pool = append(pool, templates[i])
		}
	}

	var result []entity.ChallengeTemplate
	for len(result) < count && len(pool) > 0 {
		total := 0
		for i := range pool {
			total += pool[i].Weight
		}

		pick := rng.Intn(total)
		chosen := len(pool) - 1
		cumulative := 0
		for i := range pool {
			cumulative += pool[i].Weight
			if pick < cumulative {
				chosen = i
				break
			}
		}

		result = append(result, pool[chosen])
		pool = append(pool[:chosen], pool[chosen+1:]...)
	}

	return result
}

func (d *challengeDomain) UpdateProgress(
	ctx context.Context, req *model.UpdateChallengeProgressRequest,
) (*model.UpdateChallengeProgressResponse, error) {
	if req.Increment <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Increment must be positive")
	}

	userID := xcontext.RequestUserID(ctx)
	challenge, err := d.challengeRepo.GetActiveByID(ctx, req.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found active challenge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get challenge: %v", err)
		return nil, errorx.Unknown
	}

	now := time.Now()
	if now.After(challenge.ExpiresAt) {
		return nil, errorx.New(errorx.Unavailable, "Challenge has expired")
	}

	newProgress := challenge.Progress + req.Increment
	if newProgress < challenge.Template.TargetValue {
		if err := d.challengeRepo.UpdateProgress(ctx, challenge.ID, newProgress); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.Unavailable, "Challenge is no longer active")
			}

			xcontext.Logger(ctx).Errorf("Cannot update challenge progress: %v", err)
			return nil, errorx.Unknown
		}

		challenge.Progress = newProgress
		return &model.UpdateChallengeProgressResponse{Challenge: convertChallenge(challenge)}, nil
	}

	if err := d.complete(ctx, challenge, now); err != nil {
		return nil, err
	}

	challenge.Progress = challenge.Template.TargetValue
	challenge.Status = entity.ChallengeCompleted
	challenge.CompletedAt = now
	return &model.UpdateChallengeProgressResponse{Challenge: convertChallenge(challenge)}, nil
}

// complete transitions the challenge to completed with progress clamped
// to the target, grants the template rewards, and grants the streak
// bonus if this completion fills the period quota. Everything happens
// in one transaction.
func (d *challengeDomain) complete(
	ctx context.Context, challenge *entity.Challenge, now time.Time,
) error {
	userID := xcontext.RequestUserID(ctx)
	template := &challenge.Template

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.challengeRepo.Complete(ctx, challenge.ID, template.TargetValue, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.Unavailable, "Challenge is no longer active")
		}

		xcontext.Logger(ctx).Errorf("Cannot complete challenge: %v", err)
		return errorx.Unknown
	}

	coinReward := template.CoinReward
	if coinReward == 0 {
		coinReward = fallbackCoinReward[template.Difficulty]
	}

	if coinReward > 0 {
		_, err := d.ledger.Credit(ctx, ledger.TransactionInput{
			UserID:   userID,
			Amount:   coinReward,
			Source:   challengeRewardSource,
			SourceID: challenge.ID,
		})
		if err != nil {
			return err
		}
	}

	if template.XpReward > 0 {
		if err := d.userStatsRepo.UpsertXp(ctx, userID, template.XpReward); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot grant challenge xp: %v", err)
			return errorx.Unknown
		}
	}

	if err := d.grantStreakBonus(ctx, userID, template.Type, now); err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

// grantStreakBonus pays the fixed bonus when the completion that just
// happened brings the period's completed count exactly up to the quota.
func (d *challengeDomain) grantStreakBonus(
	ctx context.Context, userID string, challengeType entity.ChallengeType, now time.Time,
) error {
	quota := dailyChallengeQuota
	bonus := int64(dailyStreakBonus)
	periodStart := dateutil.BeginningOfDay(now)
	if challengeType == entity.ChallengeWeekly {
		quota = weeklyChallengeQuota
		bonus = weeklyStreakBonus
		// Weekly challenges run Monday to Monday, so the count starts at
		// the Monday of the current week.
		periodStart = dateutil.NextMonday(now).AddDate(0, 0, -7)
	}

	completed, err := d.challengeRepo.CountCompletedSince(ctx, userID, challengeType, periodStart)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count completed challenges: %v", err)
		return errorx.Unknown
	}

	if completed != int64(quota) {
		return nil
	}

	_, err = d.ledger.Credit(ctx, ledger.TransactionInput{
		UserID: userID,
		Amount: bonus,
		Source: fmt.Sprintf("%s_streak_bonus", challengeType),
	})
	return err
}

func (d *challengeDomain) GetMyChallenges(
	ctx context.Context, req *model.GetMyChallengesRequest,
) (*model.GetMyChallengesResponse, error) {
	filter := repository.GetListChallengeFilter{UserID: xcontext.RequestUserID(ctx)}
	if req.Type != "" {
		challengeType, err := enum.ToEnum[entity.ChallengeType](req.Type)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid challenge type %s", req.Type)
		}

		filter.Type = challengeType
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.ChallengeStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid challenge status %s", req.Status)
		}

		filter.Status = status
	}

	challenges, err := d.challengeRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get challenges: %v", err)
		return nil, errorx.Unknown
	}

	result := make([]model.Challenge, 0, len(challenges))
	for i := range challenges {
		result = append(result, convertChallenge(&challenges[i]))
	}

	return &model.GetMyChallengesResponse{Challenges: result}, nil
}

// Expire sweeps every active challenge past its deadline. Safe to call
// repeatedly, each row leaves active exactly once.
func (d *challengeDomain) Expire(
	ctx context.Context, req *model.ExpireChallengesRequest,
) (*model.ExpireChallengesResponse, error) {
	count, err := d.challengeRepo.ExpireAllBefore(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot expire challenges: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ExpireChallengesResponse{Expired: count}, nil
}
