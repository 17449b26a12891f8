// services/checkin_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"checkpoint-rewards/models"
	"checkpoint-rewards/observability"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/pkg/logger"
	"checkpoint-rewards/storage"
	"checkpoint-rewards/utils"
)

const (
	DailyCheckinPoints   = 100
	DailyCheckpointLimit = 10
)

type CheckinService struct {
	players    storage.PlayerStore
	activities storage.ActivityStore
	clock      clockwork.Clock
	metrics    *observability.Metrics

	points     int64
	dailyLimit int64
}

// CheckinOption customizes a CheckinService.
type CheckinOption func(*CheckinService)

func WithCheckinClock(c clockwork.Clock) CheckinOption {
	return func(s *CheckinService) { s.clock = c }
}

func WithCheckinRules(points, dailyLimit int64) CheckinOption {
	return func(s *CheckinService) {
		if points > 0 {
			s.points = points
		}
		if dailyLimit > 0 {
			s.dailyLimit = dailyLimit
		}
	}
}

func WithCheckinMetrics(m *observability.Metrics) CheckinOption {
	return func(s *CheckinService) { s.metrics = m }
}

func NewCheckinService(players storage.PlayerStore, activities storage.ActivityStore, opts ...CheckinOption) *CheckinService {
	s := &CheckinService{
		players:    players,
		activities: activities,
		clock:      clockwork.NewRealClock(),
		points:     DailyCheckinPoints,
		dailyLimit: DailyCheckpointLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckinInput is one check-in request after the player has been resolved.
type CheckinInput struct {
	Player     *models.Player
	Checkpoint string
	Email      string
	Chain      models.Chain
	// WalletAddress is the wallet on Chain; defaults to the player's wallet for that chain.
	WalletAddress string
}

type CheckinResult struct {
	Player               *models.Player `json:"player"`
	PointsAwarded        int64          `json:"pointsAwarded"`
	PointsEarnedToday    int64          `json:"pointsEarnedToday"`
	DailyRewardClaimed   bool           `json:"dailyRewardClaimed"`
	CheckpointActivityID int64          `json:"checkpointActivityId"`
	Message              string         `json:"-"`
}

// ProcessCheckin records a checkpoint visit and awards points, subject to the
// per-wallet daily limit. Hitting the limit returns a RATE_LIMITED AppError
// and writes nothing.
//
// The count and the insert are separate statements, so two concurrent requests
// for the same wallet can both pass the limit check.
func (s *CheckinService) ProcessCheckin(ctx context.Context, in CheckinInput) (*CheckinResult, error) {
	adapter, ok := chainAdapters[in.Chain]
	if !ok {
		return nil, apperrors.Validation("Invalid chain. Must be one of: evm, solana, stellar")
	}
	if in.Player == nil {
		return nil, apperrors.Validation("Player is required")
	}
	in.Checkpoint = strings.TrimSpace(in.Checkpoint)
	if in.Checkpoint == "" {
		return nil, apperrors.Validation("Checkpoint is required")
	}
	wallet := in.WalletAddress
	if wallet == "" {
		wallet = in.Player.WalletFor(in.Chain)
	}
	if wallet == "" {
		return nil, apperrors.Validation("Wallet address is required")
	}

	log := logger.WithFields(logrus.Fields{
		"chain":      in.Chain,
		"wallet":     wallet,
		"checkpoint": in.Checkpoint,
	})

	window := utils.UTCDayBounds(s.clock)
	today := adapter.todaysCheckins(wallet, window)

	count, err := s.activities.Count(ctx, today)
	if err != nil {
		log.WithError(err).Error("failed to count today's check-ins")
		s.metrics.ObserveCheckin(string(in.Chain), "error")
		return nil, apperrors.New(apperrors.CodeStore, "Failed to check daily check-in limit", err)
	}
	if count >= s.dailyLimit {
		log.WithField("count", count).Info("daily checkpoint limit reached")
		s.metrics.ObserveCheckin(string(in.Chain), "rate_limited")
		return nil, apperrors.New(apperrors.CodeRateLimited,
			fmt.Sprintf("Daily checkpoint limit of %d reached. Come back tomorrow!", s.dailyLimit), nil)
	}

	row := &models.PointsActivity{
		ActivityType: models.ActivityCheckpointCheckin,
		PointsEarned: s.points,
		Description:  fmt.Sprintf("%sCheckpoint visit: %s", adapter.display, in.Checkpoint),
		Metadata:     adapter.metadata(in, wallet),
		Processed:    true,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if evm := in.Player.EVMWallet(); evm != "" {
		row.UserWalletAddress = models.StringPtr(evm)
	}
	if err := s.activities.Insert(ctx, row); err != nil {
		log.WithError(err).Error("failed to insert checkpoint activity")
		s.metrics.ObserveCheckin(string(in.Chain), "error")
		return nil, apperrors.New(apperrors.CodeStore, "Failed to record checkpoint visit", err)
	}

	latest := in.Player
	switch {
	case in.Player.ID != 0:
		latest, err = s.players.AddPoints(ctx, in.Player.ID, s.points)
		if err != nil {
			log.WithError(err).WithField("activity_id", row.ID).Error("failed to update player points")
			s.metrics.ObserveCheckin(string(in.Chain), "error")
			return nil, apperrors.New(apperrors.CodeStore, "Failed to update player points", err)
		}
	case in.Chain == models.ChainEVM && in.Player.EVMWallet() != "":
		if p, err := s.players.GetByWallet(ctx, models.ChainEVM, in.Player.EVMWallet()); err == nil {
			latest = p
		} else {
			log.WithError(err).Warn("could not re-read player profile after check-in")
		}
	}

	earnedToday, err := s.activities.SumPoints(ctx, today)
	if err != nil {
		log.WithError(err).Error("failed to sum today's points")
		s.metrics.ObserveCheckin(string(in.Chain), "error")
		return nil, apperrors.New(apperrors.CodeStore, "Failed to compute today's points", err)
	}

	log.WithFields(logrus.Fields{
		"activity_id":  row.ID,
		"earned_today": earnedToday,
	}).Info("checkpoint check-in recorded")
	s.metrics.ObserveCheckin(string(in.Chain), "ok")

	return &CheckinResult{
		Player:               latest,
		PointsAwarded:        s.points,
		PointsEarnedToday:    earnedToday,
		DailyRewardClaimed:   earnedToday > 0,
		CheckpointActivityID: row.ID,
		Message:              fmt.Sprintf("Nice! You earned %d points for this %scheckpoint.", s.points, adapter.display),
	}, nil
}

type CheckinStatus struct {
	HasCheckedIn           bool  `json:"hasCheckedIn"`
	CheckpointCheckinToday bool  `json:"checkpointCheckinToday"`
	DailyRewardClaimed     bool  `json:"dailyRewardClaimed"`
	PointsEarnedToday      int64 `json:"pointsEarnedToday"`
}

// Status reports an EVM wallet's check-in state for one checkpoint. The three
// ledger reads run concurrently.
func (s *CheckinService) Status(ctx context.Context, address, checkpoint string) (*CheckinStatus, error) {
	if address == "" {
		return nil, apperrors.Validation("Address parameter is required")
	}
	if checkpoint == "" {
		return nil, apperrors.Validation("Checkpoint parameter is required")
	}

	window := utils.UTCDayBounds(s.clock)
	today := chainAdapters[models.ChainEVM].todaysCheckins(address, window)

	todayAtCheckpoint := today
	todayAtCheckpoint.Checkpoint = checkpoint

	everAtCheckpoint := storage.ActivityFilter{
		ActivityType: models.ActivityCheckpointCheckin,
		Wallet:       address,
		Checkpoint:   checkpoint,
	}

	var (
		earned      int64
		todayCount  int64
		allTimeSeen int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		earned, err = s.activities.SumPoints(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		todayCount, err = s.activities.Count(gctx, todayAtCheckpoint)
		return err
	})
	g.Go(func() (err error) {
		allTimeSeen, err = s.activities.Count(gctx, everAtCheckpoint)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.WithFields(logrus.Fields{"wallet": address, "checkpoint": checkpoint}).
			WithError(err).Error("failed to check check-in status")
		return nil, apperrors.New(apperrors.CodeStore, "Failed to check check-in status", err)
	}

	return &CheckinStatus{
		HasCheckedIn:           allTimeSeen > 0,
		CheckpointCheckinToday: todayCount > 0,
		DailyRewardClaimed:     earned > 0,
		PointsEarnedToday:      earned,
	}, nil
}
