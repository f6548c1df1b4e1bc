package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/laresh1090/pennivault/internal/calculation"
	"github.com/laresh1090/pennivault/internal/domain"
)

// CreateGroup opens a rotating group with empty slots. Vendor-sponsored
// groups take the catalog's real/virtual payout split; plain groups pay the
// whole pool as cash.
func (l *Ledger) CreateGroup(name string, totalSlots, totalRounds int, contribution decimal.Decimal, vendorSponsored bool) (*domain.RotatingGroup, error) {
	if err := l.engine.ValidateGroup(totalSlots, totalRounds, contribution); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group := &domain.RotatingGroup{
		ID:                 uuid.New(),
		Name:               name,
		TotalSlots:         totalSlots,
		ContributionAmount: contribution,
		TotalRounds:        totalRounds,
		CurrentRound:       1,
		PayoutStartRound:   l.engine.GroupStartRound(totalRounds),
		Status:             domain.GroupStatusOpen,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if vendorSponsored {
		pct := l.engine.VendorRealPercent()
		group.VendorRealPercent = &pct
	}

	if err := l.storage.CreateGroup(group); err != nil {
		return nil, fmt.Errorf("failed to store group: %w", err)
	}

	l.logger.Info("rotating group created",
		zap.String("group_id", group.ID.String()),
		zap.Int("slots", totalSlots),
		zap.Int("payout_start_round", group.PayoutStartRound),
		zap.Bool("vendor", vendorSponsored))
	return group, nil
}

// JoinGroup assigns the next free position to a member. Filling the last
// slot freezes positions, generates the payout schedule and activates the
// group in the same write.
func (l *Ledger) JoinGroup(groupID uuid.UUID, memberKey string) (*domain.RotatingGroup, error) {
	group, err := l.storage.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if group.Status != domain.GroupStatusOpen {
		return nil, fmt.Errorf("%w: group is %s", domain.ErrGroupFull, group.Status)
	}
	for _, m := range group.Members {
		if m.MemberKey == memberKey {
			return nil, fmt.Errorf("%w: %s already holds position %d", domain.ErrInvalidParameters, memberKey, m.Position)
		}
	}

	now := time.Now().UTC()
	group.Members = append(group.Members, domain.GroupMember{
		MemberKey: memberKey,
		Position:  group.FilledSlots() + 1,
		JoinedAt:  now,
	})
	group.UpdatedAt = now

	if group.Full() {
		schedule, err := calculation.BuildPayoutSchedule(group)
		if err != nil {
			return nil, err
		}
		group.Schedule = schedule
		group.Status = domain.GroupStatusActive
	}

	if err := l.storage.UpdateGroup(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	l.logger.Info("member joined group",
		zap.String("group_id", group.ID.String()),
		zap.String("member", memberKey),
		zap.Int("position", group.FilledSlots()),
		zap.String("status", string(group.Status)))
	return group, nil
}

// Contribute records a member's contribution for the current round, debiting
// the contribution amount. Paying twice in one round returns ErrAlreadyPaid
// without a second debit.
func (l *Ledger) Contribute(ctx context.Context, groupID uuid.UUID, memberKey string) (*domain.RotatingGroup, error) {
	group, err := l.storage.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if group.Status != domain.GroupStatusActive {
		return nil, fmt.Errorf("%w: group is %s", domain.ErrInvalidParameters, group.Status)
	}

	var member *domain.GroupMember
	for i := range group.Members {
		if group.Members[i].MemberKey == memberKey {
			member = &group.Members[i]
			break
		}
	}
	if member == nil {
		return nil, fmt.Errorf("%w: %s is not a member of this group", domain.ErrInvalidParameters, memberKey)
	}
	if member.HasPaidCurrentRound {
		return nil, fmt.Errorf("%w: round %d contribution already recorded", domain.ErrAlreadyPaid, group.CurrentRound)
	}

	if err := l.wallet.Debit(ctx, memberKey, group.ContributionAmount); err != nil {
		return nil, fmt.Errorf("contribution debit failed: %w", err)
	}

	member.HasPaidCurrentRound = true
	group.UpdatedAt = time.Now().UTC()
	if err := l.storage.UpdateGroup(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	l.logger.Info("group contribution recorded",
		zap.String("group_id", group.ID.String()),
		zap.String("member", memberKey),
		zap.Int("round", group.CurrentRound))
	return group, nil
}

// AdvanceRound closes the current round. Every filled slot must have paid,
// else ErrRotationNotReady. Rounds in the payout window credit the scheduled
// recipient's cash rail; the virtual rail is issued as product credit
// outside the wallet. The final round completes the group.
func (l *Ledger) AdvanceRound(ctx context.Context, groupID uuid.UUID) (*domain.RotatingGroup, error) {
	group, err := l.storage.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if group.Status != domain.GroupStatusActive {
		return nil, fmt.Errorf("%w: group is %s", domain.ErrInvalidParameters, group.Status)
	}
	if !group.AllPaidCurrentRound() {
		return nil, fmt.Errorf("%w: round %d has unpaid members", domain.ErrRotationNotReady, group.CurrentRound)
	}

	if entry := group.PayoutForRound(group.CurrentRound); entry != nil {
		recipient := group.Member(entry.RecipientPosition)
		if recipient == nil {
			return nil, fmt.Errorf("%w: no member at position %d", domain.ErrInvalidParameters, entry.RecipientPosition)
		}
		if err := l.wallet.Credit(ctx, recipient.MemberKey, entry.RealAmount); err != nil {
			return nil, fmt.Errorf("payout credit failed: %w", err)
		}
		l.logger.Info("round payout disbursed",
			zap.String("group_id", group.ID.String()),
			zap.Int("round", group.CurrentRound),
			zap.String("recipient", recipient.MemberKey),
			zap.String("real", entry.RealAmount.StringFixed(2)),
			zap.String("virtual", entry.VirtualAmount.StringFixed(2)))
	}

	now := time.Now().UTC()
	for i := range group.Members {
		group.Members[i].HasPaidCurrentRound = false
	}
	if group.CurrentRound >= group.TotalRounds {
		group.Status = domain.GroupStatusCompleted
	} else {
		group.CurrentRound++
	}
	group.UpdatedAt = now

	if err := l.storage.UpdateGroup(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return group, nil
}

// AdvanceDueGroups advances every active group whose current round is fully
// paid. Run from the external scheduler; groups that are not ready are
// skipped, not failed.
func (l *Ledger) AdvanceDueGroups(ctx context.Context) (int, error) {
	groups, err := l.storage.ListActiveGroups()
	if err != nil {
		return 0, fmt.Errorf("failed to list active groups: %w", err)
	}
	advanced := 0
	for _, group := range groups {
		if !group.AllPaidCurrentRound() {
			continue
		}
		if _, err := l.AdvanceRound(ctx, group.ID); err != nil {
			l.logger.Error("round advance sweep failed",
				zap.String("group_id", group.ID.String()), zap.Error(err))
			continue
		}
		advanced++
	}
	return advanced, nil
}

// GetGroup retrieves a rotating group by id.
func (l *Ledger) GetGroup(id uuid.UUID) (*domain.RotatingGroup, error) {
	return l.storage.GetGroup(id)
}

// GroupTurnTable renders the full turn-order view of a group.
func (l *Ledger) GroupTurnTable(id uuid.UUID) ([]calculation.TurnRow, error) {
	group, err := l.storage.GetGroup(id)
	if err != nil {
		return nil, err
	}
	return calculation.TurnTable(group), nil
}
