package criteria

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/enum"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Grade criterion
type gradeCriterion struct {
	MinAverage float64 `mapstructure:"min_average"`

	factory Factory
}

func newGradeCriterion(ctx context.Context, factory Factory, data map[string]any) (*gradeCriterion, error) {
	criterion := gradeCriterion{factory: factory}
	if err := mapstructure.Decode(data, &criterion); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode map to struct: %v", err)
		return nil, errorx.Unknown
	}

	return &criterion, nil
}

func (c *gradeCriterion) Statement() string {
	return fmt.Sprintf("Reach a grade average of %.1f", c.MinAverage)
}

func (c *gradeCriterion) Check(ctx context.Context, userID string) (bool, error) {
	stats, err := c.factory.userStatsRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user stats: %v", err)
		return false, errorx.Unknown
	}

	return stats.GradeAverage >= c.MinAverage, nil
}

// Attendance criterion
type attendanceCriterion struct {
	MinStreak int `mapstructure:"min_streak"`

	factory Factory
}

func newAttendanceCriterion(ctx context.Context, factory Factory, data map[string]any) (*attendanceCriterion, error) {
	criterion := attendanceCriterion{factory: factory}
	if err := mapstructure.Decode(data, &criterion); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode map to struct: %v", err)
		return nil, errorx.Unknown
	}

	return &criterion, nil
}

func (c *attendanceCriterion) Statement() string {
	return fmt.Sprintf("Keep an attendance streak of %d days", c.MinStreak)
}

func (c *attendanceCriterion) Check(ctx context.Context, userID string) (bool, error) {
	streak, err := c.factory.userStatsRepo.GetStreak(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get attendance streak: %v", err)
		return false, errorx.Unknown
	}

	return streak.CurrentStreak >= c.MinStreak, nil
}

// Social criterion
type socialCriterion struct {
	MinPosts int `mapstructure:"min_posts"`

	factory Factory
}

func newSocialCriterion(ctx context.Context, factory Factory, data map[string]any) (*socialCriterion, error) {
	criterion := socialCriterion{factory: factory}
	if err := mapstructure.Decode(data, &criterion); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode map to struct: %v", err)
		return nil, errorx.Unknown
	}

	return &criterion, nil
}

func (c *socialCriterion) Statement() string {
	return fmt.Sprintf("Publish %d posts", c.MinPosts)
}

func (c *socialCriterion) Check(ctx context.Context, userID string) (bool, error) {
	stats, err := c.factory.userStatsRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user stats: %v", err)
		return false, errorx.Unknown
	}

	return stats.PostCount >= c.MinPosts, nil
}

// Challenge criterion
type challengeCriterion struct {
	MinCompleted int `mapstructure:"min_completed"`

	factory Factory
}

func newChallengeCriterion(ctx context.Context, factory Factory, data map[string]any) (*challengeCriterion, error) {
	criterion := challengeCriterion{factory: factory}
	if err := mapstructure.Decode(data, &criterion); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode map to struct: %v", err)
		return nil, errorx.Unknown
	}

	return &criterion, nil
}

func (c *challengeCriterion) Statement() string {
	return fmt.Sprintf("Complete %d challenges", c.MinCompleted)
}

func (c *challengeCriterion) Check(ctx context.Context, userID string) (bool, error) {
	count, err := c.factory.challengeRepo.CountCompleted(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count completed challenges: %v", err)
		return false, errorx.Unknown
	}

	return count >= int64(c.MinCompleted), nil
}

// Composite criterion
type compositeLogicType string

var (
	LogicAnd = enum.New(compositeLogicType("and"))
	LogicOr  = enum.New(compositeLogicType("or"))
)

type compositeCriterion struct {
	Logic    string                 `mapstructure:"logic"`
	Children []entity.CriterionNode `mapstructure:"children"`

	factory Factory
}

func newCompositeCriterion(ctx context.Context, factory Factory, data map[string]any) (*compositeCriterion, error) {
	criterion := compositeCriterion{factory: factory}
	if err := mapstructure.Decode(data, &criterion); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode map to struct: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := enum.ToEnum[compositeLogicType](criterion.Logic); err != nil {
		xcontext.Logger(ctx).Debugf("Invalid composite logic: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid composite logic")
	}

	return &criterion, nil
}

func (c *compositeCriterion) Statement() string {
	return fmt.Sprintf("Satisfy %s of %d sub-criteria", c.Logic, len(c.Children))
}

// Check evaluates children with short-circuiting. An empty child list
// is satisfied by definition.
func (c *compositeCriterion) Check(ctx context.Context, userID string) (bool, error) {
	for _, node := range c.Children {
		child, err := c.factory.New(ctx, node)
		if err != nil {
			return false, err
		}

		ok, err := child.Check(ctx, userID)
		if err != nil {
			return false, err
		}

		if compositeLogicType(c.Logic) == LogicAnd && !ok {
			return false, nil
		}

		if compositeLogicType(c.Logic) == LogicOr && ok {
			return true, nil
		}
	}

	return compositeLogicType(c.Logic) == LogicAnd || len(c.Children) == 0, nil
}
