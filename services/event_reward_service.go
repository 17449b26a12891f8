// services/event_reward_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"checkpoint-rewards/models"
	"checkpoint-rewards/observability"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/pkg/logger"
	"checkpoint-rewards/storage"
	"checkpoint-rewards/utils"
)

// EventRewardService awards a fixed number of points to every attendee of an
// off-chain event, at most once per event.
type EventRewardService struct {
	rewards    storage.EventRewardStore
	players    storage.PlayerStore
	activities storage.ActivityStore
	metrics    *observability.Metrics
}

func NewEventRewardService(rewards storage.EventRewardStore, players storage.PlayerStore, activities storage.ActivityStore, metrics *observability.Metrics) *EventRewardService {
	return &EventRewardService{
		rewards:    rewards,
		players:    players,
		activities: activities,
		metrics:    metrics,
	}
}

type EventRewardRequest struct {
	EventID         string
	EventName       string
	PointsPerHolder int64
	Emails          []string
	AdminEmail      string
}

type EventRewardOutcome struct {
	TotalHolders       int      `json:"totalHolders"`
	UniqueEmails       int      `json:"uniqueEmails"`
	MatchedPlayers     int      `json:"matchedPlayers"`
	UnmatchedEmails    []string `json:"unmatchedEmails"`
	TotalPointsAwarded int64    `json:"totalPointsAwarded"`
	EventName          string   `json:"eventName"`
}

// Award inserts the event_rewards row first; its unique event_id is the lock
// against awarding the same event twice. A duplicate yields a CONFLICT error.
func (s *EventRewardService) Award(ctx context.Context, req EventRewardRequest) (*EventRewardOutcome, error) {
	req.EventID = strings.TrimSpace(req.EventID)
	if req.EventID == "" {
		return nil, apperrors.Validation("eventId is required")
	}
	if req.PointsPerHolder < 1 {
		return nil, apperrors.Validation("pointsPerHolder must be at least 1")
	}
	if req.EventName == "" {
		req.EventName = req.EventID
	}

	log := logger.WithFields(logrus.Fields{"event_id": req.EventID, "admin": req.AdminEmail})

	emails := uniqueEmails(req.Emails)

	err := s.rewards.Create(ctx, &models.EventReward{
		ID:              uuid.NewString(),
		EventID:         req.EventID,
		EventName:       req.EventName,
		PointsPerHolder: req.PointsPerHolder,
		AwardedByEmail:  req.AdminEmail,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.metrics.ObserveEventReward("duplicate")
			return nil, apperrors.New(apperrors.CodeConflict, "Points for this event have already been awarded", nil)
		}
		s.metrics.ObserveEventReward("error")
		log.WithError(err).Error("failed to initialize reward record")
		return nil, apperrors.New(apperrors.CodeStore, "Failed to initialize reward record", err)
	}

	players, err := s.players.ListByEmails(ctx, emails)
	if err != nil {
		s.metrics.ObserveEventReward("error")
		return nil, storeError("Failed to load players", err)
	}
	byEmail := make(map[string]*models.Player, len(players))
	for _, p := range players {
		key := strings.ToLower(p.EmailValue())
		if _, seen := byEmail[key]; !seen {
			byEmail[key] = p
		}
	}

	var (
		unmatched []string
		matched   []*models.Player
		rows      []*models.PointsActivity
	)
	for _, email := range emails {
		p, ok := byEmail[email]
		if !ok {
			unmatched = append(unmatched, email)
			continue
		}
		if evm := p.EVMWallet(); utils.IsEVMAddress(evm) {
			rows = append(rows, &models.PointsActivity{
				UserWalletAddress: models.StringPtr(evm),
				ActivityType:      models.ActivityEventReward,
				PointsEarned:      req.PointsPerHolder,
				Description:       fmt.Sprintf("Event reward: %s", req.EventName),
				Metadata: models.JSONMap{
					"event_id":   req.EventID,
					"event_name": req.EventName,
					"awarded_by": req.AdminEmail,
				},
				Processed: true,
			})
		}
		matched = append(matched, p)
	}

	if len(rows) > 0 {
		if err := s.activities.InsertBatch(ctx, rows); err != nil {
			// Totals are still credited below; only the ledger rows are lost.
			log.WithError(err).Error("event reward ledger batch insert failed")
		}
	}

	out := &EventRewardOutcome{
		TotalHolders: len(req.Emails),
		UniqueEmails: len(emails),
		EventName:    req.EventName,
	}
	for _, p := range matched {
		if _, err := s.players.AddPoints(ctx, p.ID, req.PointsPerHolder); err != nil {
			log.WithError(err).WithField("player_id", p.ID).Error("failed to award points")
			unmatched = append(unmatched, strings.ToLower(p.EmailValue()))
			continue
		}
		out.MatchedPlayers++
		out.TotalPointsAwarded += req.PointsPerHolder
	}
	out.UnmatchedEmails = unmatched
	if out.UnmatchedEmails == nil {
		out.UnmatchedEmails = []string{}
	}

	if err := s.rewards.Finalize(ctx, req.EventID, storage.EventRewardSummary{
		TotalHoldersFound:  out.TotalHolders,
		MatchedPlayers:     out.MatchedPlayers,
		UnmatchedHolders:   out.UniqueEmails - out.MatchedPlayers,
		TotalPointsAwarded: out.TotalPointsAwarded,
	}); err != nil {
		log.WithError(err).Error("failed to update tracking record")
	}

	s.metrics.ObserveEventReward("ok")
	log.WithFields(logrus.Fields{
		"matched":      out.MatchedPlayers,
		"total_points": out.TotalPointsAwarded,
	}).Info("event reward awarded")
	return out, nil
}

func uniqueEmails(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
