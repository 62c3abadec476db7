package criteria

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/testutil"
)

func Test_Factory_Evaluate_leafCriteria(t *testing.T) {
	ctx := testutil.MockContext()
	factory := NewFactory(repository.NewUserStatsRepository(), repository.NewChallengeRepository())

	testutil.InsertUserStats(ctx, entity.UserStats{UserID: "user1", GradeAverage: 90, PostCount: 2})
	testutil.InsertAttendanceStreak(ctx, entity.AttendanceStreak{UserID: "user1", CurrentStreak: 7})

	ok, err := factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.GradeCriterion, Data: entity.Map{"min_average": 85.0}},
	}, "user1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.GradeCriterion, Data: entity.Map{"min_average": 95.0}},
	}, "user1")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.AttendanceCriterion, Data: entity.Map{"min_streak": 5}},
	}, "user1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.SocialCriterion, Data: entity.Map{"min_posts": 10}},
	}, "user1")
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_Factory_Evaluate_missingStats(t *testing.T) {
	ctx := testutil.MockContext()
	factory := NewFactory(repository.NewUserStatsRepository(), repository.NewChallengeRepository())

	// A user without stats rows fails the criterion instead of erroring.
	ok, err := factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.GradeCriterion, Data: entity.Map{"min_average": 50.0}},
	}, "unknown-user")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.AttendanceCriterion, Data: entity.Map{"min_streak": 1}},
	}, "unknown-user")
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_Factory_Evaluate_challengeCriterion(t *testing.T) {
	ctx := testutil.MockContext()
	challengeRepo := repository.NewChallengeRepository()
	factory := NewFactory(repository.NewUserStatsRepository(), challengeRepo)

	template := testutil.InsertChallengeTemplate(ctx, entity.ChallengeTemplate{TargetValue: 1})
	for i := 0; i < 3; i++ {
		err := challengeRepo.Create(ctx, &entity.Challenge{
			Base:        entity.Base{ID: uuid.NewString()},
			UserID:      "user1",
			TemplateID:  template.ID,
			Progress:    1,
			Status:      entity.ChallengeCompleted,
			ExpiresAt:   time.Now().Add(time.Hour),
			CompletedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	ok, err := factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.ChallengeCriterion, Data: entity.Map{"min_completed": 3}},
	}, "user1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.ChallengeCriterion, Data: entity.Map{"min_completed": 4}},
	}, "user1")
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_Factory_Evaluate_composite(t *testing.T) {
	ctx := testutil.MockContext()
	factory := NewFactory(repository.NewUserStatsRepository(), repository.NewChallengeRepository())

	testutil.InsertUserStats(ctx, entity.UserStats{UserID: "user1", GradeAverage: 90, PostCount: 2})

	// OR passes as soon as one child passes.
	ok, err := factory.Evaluate(ctx, []entity.CriterionNode{
		{
			Type: entity.CompositeCriterion,
			Data: entity.Map{
				"logic": "or",
				"children": []entity.CriterionNode{
					{Type: entity.SocialCriterion, Data: entity.Map{"min_posts": 10}},
					{Type: entity.GradeCriterion, Data: entity.Map{"min_average": 85.0}},
				},
			},
		},
	}, "user1")
	require.NoError(t, err)
	require.True(t, ok)

	// AND requires every child.
	ok, err = factory.Evaluate(ctx, []entity.CriterionNode{
		{
			Type: entity.CompositeCriterion,
			Data: entity.Map{
				"logic": "and",
				"children": []entity.CriterionNode{
					{Type: entity.GradeCriterion, Data: entity.Map{"min_average": 85.0}},
					{Type: entity.SocialCriterion, Data: entity.Map{"min_posts": 10}},
				},
			},
		},
	}, "user1")
	require.NoError(t, err)
	require.False(t, ok)

	// Top-level nodes combine with AND.
	ok, err = factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.GradeCriterion, Data: entity.Map{"min_average": 85.0}},
		{Type: entity.SocialCriterion, Data: entity.Map{"min_posts": 1}},
	}, "user1")
	require.NoError(t, err)
	require.True(t, ok)
}

func Test_Factory_Evaluate_emptyCriteria(t *testing.T) {
	ctx := testutil.MockContext()
	factory := NewFactory(repository.NewUserStatsRepository(), repository.NewChallengeRepository())

	ok, err := factory.Evaluate(ctx, nil, "user1")
	require.NoError(t, err)
	require.True(t, ok)

	// A composite without children is vacuously satisfied, whatever its
	// logic.
	ok, err = factory.Evaluate(ctx, []entity.CriterionNode{
		{Type: entity.CompositeCriterion, Data: entity.Map{"logic": "or"}},
	}, "user1")
	require.NoError(t, err)
	require.True(t, ok)
}

func Test_Factory_New_unknownType(t *testing.T) {
	ctx := testutil.MockContext()
	factory := NewFactory(repository.NewUserStatsRepository(), repository.NewChallengeRepository())

	_, err := factory.New(ctx, entity.CriterionNode{Type: "bogus"})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}
