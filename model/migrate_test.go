package model_test

import (
	"testing"
	"time"

	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	user := &model.User{Username: "test_user", Email: "t@campus.edu", PasswordHash: "hash"}
	require.NoError(t, db.Create(user).Error)
	assert.Greater(t, user.ID, int64(0))

	var found model.User
	require.NoError(t, db.First(&found, user.ID).Error)
	assert.Equal(t, "test_user", found.Username)

	mood := &model.MoodEntry{UserID: user.ID, MoodLevel: 4, StressLevel: 2, Notes: "ok"}
	require.NoError(t, db.Create(mood).Error)

	act := &model.Activity{UserID: user.ID, Name: "Yoga", Hours: 1.5, Mood: 5}
	require.NoError(t, db.Create(act).Error)

	ch := &model.Challenge{Title: "Walk", TotalDays: 3}
	require.NoError(t, db.Create(ch).Error)

	now := time.Now()
	uc := &model.UserChallenge{
		UserID: user.ID, ChallengeID: ch.ID,
		Status: model.ChallengeStatusActive, StartDate: now, EndDate: now.Add(7 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(uc).Error)

	res := &model.Resource{Title: "Library", Category: "Academic"}
	require.NoError(t, db.Create(res).Error)

	al := &model.AuditLog{TraceID: "trace-001", Action: "challenge.join"}
	require.NoError(t, db.Create(al).Error)
}

func TestUserChallenge_UniquePerUserAndChallenge(t *testing.T) {
	db := testutil.SetupTestDB(t)

	now := time.Now()
	first := &model.UserChallenge{UserID: 1, ChallengeID: 1, Status: model.ChallengeStatusActive, StartDate: now, EndDate: now}
	require.NoError(t, db.Create(first).Error)

	dup := &model.UserChallenge{UserID: 1, ChallengeID: 1, Status: model.ChallengeStatusActive, StartDate: now, EndDate: now}
	assert.Error(t, db.Create(dup).Error)

	other := &model.UserChallenge{UserID: 2, ChallengeID: 1, Status: model.ChallengeStatusActive, StartDate: now, EndDate: now}
	assert.NoError(t, db.Create(other).Error)
}

func TestSeed_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, model.Seed(db))
	require.NoError(t, model.Seed(db))

	var challenges []model.Challenge
	require.NoError(t, db.Order("id").Find(&challenges).Error)
	require.Len(t, challenges, len(model.DefaultChallenges))
	assert.Equal(t, "7-Day Meditation Streak", challenges[0].Title)
	assert.Equal(t, 5, challenges[2].TotalDays)

	var resources int64
	require.NoError(t, db.Model(&model.Resource{}).Count(&resources).Error)
	assert.Equal(t, int64(len(model.DefaultResources)), resources)

	// package-level defaults stay untouched
	assert.Zero(t, model.DefaultChallenges[0].ID)
}
