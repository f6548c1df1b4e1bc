package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"

	"github.com/laresh1090/pennivault/internal/domain"
)

// SQLiteStore persists plans, locks and groups in SQLite. Decimal columns
// are TEXT so no precision is ever lost in the round trip.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and initializes the schema.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS installment_plans (
		id TEXT PRIMARY KEY,
		customer_key TEXT NOT NULL,
		item_price TEXT NOT NULL,
		upfront_amount TEXT NOT NULL,
		remaining_base TEXT NOT NULL,
		markup_percent TEXT NOT NULL,
		markup_amount TEXT NOT NULL,
		monthly_amount TEXT NOT NULL,
		number_of_payments INTEGER NOT NULL,
		total_cost TEXT NOT NULL,
		rounding_adjustment TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		next_payment_due_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS installment_payments (
		plan_id TEXT NOT NULL,
		payment_number INTEGER NOT NULL,
		amount TEXT NOT NULL,
		due_date DATETIME NOT NULL,
		status TEXT NOT NULL,
		paid_at DATETIME,
		PRIMARY KEY (plan_id, payment_number),
		FOREIGN KEY (plan_id) REFERENCES installment_plans(id)
	);
	CREATE TABLE IF NOT EXISTS lock_plans (
		id TEXT PRIMARY KEY,
		customer_key TEXT NOT NULL,
		principal TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		annual_rate TEXT NOT NULL,
		interest_mode TEXT NOT NULL,
		status TEXT NOT NULL,
		accrued_interest TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		maturity_date DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS rotating_groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		total_slots INTEGER NOT NULL,
		contribution_amount TEXT NOT NULL,
		total_rounds INTEGER NOT NULL,
		current_round INTEGER NOT NULL,
		payout_start_round INTEGER NOT NULL,
		vendor_real_percent TEXT,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS group_members (
		group_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		member_key TEXT NOT NULL,
		has_paid_current_round INTEGER NOT NULL DEFAULT 0,
		joined_at DATETIME NOT NULL,
		PRIMARY KEY (group_id, position),
		FOREIGN KEY (group_id) REFERENCES rotating_groups(id)
	);
	CREATE TABLE IF NOT EXISTS group_payouts (
		group_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		recipient_position INTEGER NOT NULL,
		amount TEXT NOT NULL,
		real_amount TEXT NOT NULL,
		virtual_amount TEXT NOT NULL,
		PRIMARY KEY (group_id, round),
		FOREIGN KEY (group_id) REFERENCES rotating_groups(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateInstallmentPlan inserts a plan and its whole payment ladder in one
// transaction.
func (s *SQLiteStore) CreateInstallmentPlan(plan *domain.InstallmentPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	b := plan.Breakdown
	_, err = tx.Exec(
		`INSERT INTO installment_plans (id, customer_key, item_price, upfront_amount, remaining_base,
			markup_percent, markup_amount, monthly_amount, number_of_payments, total_cost,
			rounding_adjustment, status, start_date, next_payment_due_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID.String(), plan.CustomerKey, b.ItemPrice, b.UpfrontAmount, b.RemainingBase,
		b.MarkupPercent, b.MarkupAmount, b.MonthlyAmount, b.NumberOfPayments, b.TotalCost,
		b.RoundingAdjustment, plan.Status, plan.StartDate, plan.NextPaymentDueAt, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create installment plan: %w", err)
	}

	for _, p := range plan.Payments {
		_, err = tx.Exec(
			`INSERT INTO installment_payments (plan_id, payment_number, amount, due_date, status, paid_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			plan.ID.String(), p.PaymentNumber, p.Amount, p.DueDate, p.Status, p.PaidAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create payment %d: %w", p.PaymentNumber, err)
		}
	}

	return tx.Commit()
}

// GetInstallmentPlan loads a plan with its ladder, ordered by payment number.
func (s *SQLiteStore) GetInstallmentPlan(id uuid.UUID) (*domain.InstallmentPlan, error) {
	row := s.db.QueryRow(
		`SELECT id, customer_key, item_price, upfront_amount, remaining_base, markup_percent,
			markup_amount, monthly_amount, number_of_payments, total_cost, rounding_adjustment,
			status, start_date, next_payment_due_at, created_at, updated_at
		FROM installment_plans WHERE id = ?`, id.String(),
	)
	plan, err := scanInstallmentPlan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get installment plan: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT payment_number, amount, due_date, status, paid_at
		FROM installment_payments WHERE plan_id = ? ORDER BY payment_number`, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.InstallmentPayment
		var paidAt sql.NullTime
		if err := rows.Scan(&p.PaymentNumber, &p.Amount, &p.DueDate, &p.Status, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if paidAt.Valid {
			t := paidAt.Time
			p.PaidAt = &t
		}
		plan.Payments = append(plan.Payments, p)
	}
	return plan, rows.Err()
}

// UpdateInstallmentPlan writes back the plan row and every ladder entry's
// mutable fields in one transaction.
func (s *SQLiteStore) UpdateInstallmentPlan(plan *domain.InstallmentPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE installment_plans SET status = ?, next_payment_due_at = ?, updated_at = ? WHERE id = ?`,
		plan.Status, plan.NextPaymentDueAt, plan.UpdatedAt, plan.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update installment plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPlanNotFound
	}

	for _, p := range plan.Payments {
		_, err = tx.Exec(
			`UPDATE installment_payments SET status = ?, paid_at = ? WHERE plan_id = ? AND payment_number = ?`,
			p.Status, p.PaidAt, plan.ID.String(), p.PaymentNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to update payment %d: %w", p.PaymentNumber, err)
		}
	}

	return tx.Commit()
}

// ListActiveInstallmentPlans returns all plans still accepting payments.
func (s *SQLiteStore) ListActiveInstallmentPlans() ([]*domain.InstallmentPlan, error) {
	rows, err := s.db.Query(`SELECT id FROM installment_plans WHERE status = ?`, domain.PlanStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	plans := make([]*domain.InstallmentPlan, 0, len(ids))
	for _, id := range ids {
		plan, err := s.GetInstallmentPlan(id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// CreateLockPlan inserts a lock plan.
func (s *SQLiteStore) CreateLockPlan(plan *domain.LockPlan) error {
	_, err := s.db.Exec(
		`INSERT INTO lock_plans (id, customer_key, principal, duration_days, annual_rate,
			interest_mode, status, accrued_interest, start_date, maturity_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID.String(), plan.CustomerKey, plan.Principal, plan.DurationDays, plan.AnnualRate,
		plan.InterestMode, plan.Status, plan.AccruedInterest, plan.StartDate, plan.MaturityDate,
		plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lock plan: %w", err)
	}
	return nil
}

// GetLockPlan loads a lock plan by id.
func (s *SQLiteStore) GetLockPlan(id uuid.UUID) (*domain.LockPlan, error) {
	row := s.db.QueryRow(
		`SELECT id, customer_key, principal, duration_days, annual_rate, interest_mode,
			status, accrued_interest, start_date, maturity_date, created_at, updated_at
		FROM lock_plans WHERE id = ?`, id.String(),
	)

	var plan domain.LockPlan
	var idStr string
	err := row.Scan(&idStr, &plan.CustomerKey, &plan.Principal, &plan.DurationDays, &plan.AnnualRate,
		&plan.InterestMode, &plan.Status, &plan.AccruedInterest, &plan.StartDate, &plan.MaturityDate,
		&plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to get lock plan: %w", err)
	}
	plan.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid lock plan id %q: %w", idStr, err)
	}
	return &plan, nil
}

// UpdateLockPlan writes back a lock plan's mutable fields.
func (s *SQLiteStore) UpdateLockPlan(plan *domain.LockPlan) error {
	res, err := s.db.Exec(
		`UPDATE lock_plans SET status = ?, accrued_interest = ?, updated_at = ? WHERE id = ?`,
		plan.Status, plan.AccruedInterest, plan.UpdatedAt, plan.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update lock plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrLockNotFound
	}
	return nil
}

// ListActiveLockPlans returns all locks that have not reached a terminal
// state.
func (s *SQLiteStore) ListActiveLockPlans() ([]*domain.LockPlan, error) {
	rows, err := s.db.Query(`SELECT id FROM lock_plans WHERE status = ?`, domain.LockStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active locks: %w", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	plans := make([]*domain.LockPlan, 0, len(ids))
	for _, id := range ids {
		plan, err := s.GetLockPlan(id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// CreateGroup inserts a group and its current members in one transaction.
func (s *SQLiteStore) CreateGroup(group *domain.RotatingGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO rotating_groups (id, name, total_slots, contribution_amount, total_rounds,
			current_round, payout_start_round, vendor_real_percent, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID.String(), group.Name, group.TotalSlots, group.ContributionAmount, group.TotalRounds,
		group.CurrentRound, group.PayoutStartRound, vendorPercentValue(group.VendorRealPercent),
		group.Status, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	if err := insertMembers(tx, group); err != nil {
		return err
	}
	if err := insertPayouts(tx, group); err != nil {
		return err
	}
	return tx.Commit()
}

// GetGroup loads a group with members and payout schedule.
func (s *SQLiteStore) GetGroup(id uuid.UUID) (*domain.RotatingGroup, error) {
	row := s.db.QueryRow(
		`SELECT id, name, total_slots, contribution_amount, total_rounds, current_round,
			payout_start_round, vendor_real_percent, status, created_at, updated_at
		FROM rotating_groups WHERE id = ?`, id.String(),
	)

	var group domain.RotatingGroup
	var idStr string
	var vendorPct sql.NullString
	err := row.Scan(&idStr, &group.Name, &group.TotalSlots, &group.ContributionAmount,
		&group.TotalRounds, &group.CurrentRound, &group.PayoutStartRound, &vendorPct,
		&group.Status, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid group id %q: %w", idStr, err)
	}
	if vendorPct.Valid {
		pct, err := decimal.NewFromString(vendorPct.String)
		if err != nil {
			return nil, fmt.Errorf("invalid vendor percent %q: %w", vendorPct.String, err)
		}
		group.VendorRealPercent = &pct
	}

	memberRows, err := s.db.Query(
		`SELECT position, member_key, has_paid_current_round, joined_at
		FROM group_members WHERE group_id = ? ORDER BY position`, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var m domain.GroupMember
		if err := memberRows.Scan(&m.Position, &m.MemberKey, &m.HasPaidCurrentRound, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		group.Members = append(group.Members, m)
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}

	payoutRows, err := s.db.Query(
		`SELECT round, recipient_position, amount, real_amount, virtual_amount
		FROM group_payouts WHERE group_id = ? ORDER BY round`, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payouts: %w", err)
	}
	defer payoutRows.Close()
	for payoutRows.Next() {
		var e domain.PayoutEntry
		if err := payoutRows.Scan(&e.Round, &e.RecipientPosition, &e.Amount, &e.RealAmount, &e.VirtualAmount); err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		group.Schedule = append(group.Schedule, e)
	}
	return &group, payoutRows.Err()
}

// UpdateGroup rewrites the group row, its membership and its payout schedule
// in one transaction.
func (s *SQLiteStore) UpdateGroup(group *domain.RotatingGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE rotating_groups SET current_round = ?, status = ?, updated_at = ? WHERE id = ?`,
		group.CurrentRound, group.Status, group.UpdatedAt, group.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrGroupNotFound
	}

	if _, err := tx.Exec(`DELETE FROM group_members WHERE group_id = ?`, group.ID.String()); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}
	if err := insertMembers(tx, group); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM group_payouts WHERE group_id = ?`, group.ID.String()); err != nil {
		return fmt.Errorf("failed to clear payouts: %w", err)
	}
	if err := insertPayouts(tx, group); err != nil {
		return err
	}
	return tx.Commit()
}

// ListActiveGroups returns groups whose rounds are still running, plus open
// groups still filling slots.
func (s *SQLiteStore) ListActiveGroups() ([]*domain.RotatingGroup, error) {
	rows, err := s.db.Query(`SELECT id FROM rotating_groups WHERE status = ?`, domain.GroupStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active groups: %w", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	groups := make([]*domain.RotatingGroup, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func insertMembers(tx *sql.Tx, group *domain.RotatingGroup) error {
	for _, m := range group.Members {
		_, err := tx.Exec(
			`INSERT INTO group_members (group_id, position, member_key, has_paid_current_round, joined_at)
			VALUES (?, ?, ?, ?, ?)`,
			group.ID.String(), m.Position, m.MemberKey, m.HasPaidCurrentRound, m.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member at position %d: %w", m.Position, err)
		}
	}
	return nil
}

func insertPayouts(tx *sql.Tx, group *domain.RotatingGroup) error {
	for _, e := range group.Schedule {
		_, err := tx.Exec(
			`INSERT INTO group_payouts (group_id, round, recipient_position, amount, real_amount, virtual_amount)
			VALUES (?, ?, ?, ?, ?, ?)`,
			group.ID.String(), e.Round, e.RecipientPosition, e.Amount, e.RealAmount, e.VirtualAmount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payout for round %d: %w", e.Round, err)
		}
	}
	return nil
}

func vendorPercentValue(pct *decimal.Decimal) interface{} {
	if pct == nil {
		return nil
	}
	return *pct
}

func collectIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", idStr, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInstallmentPlan(row rowScanner) (*domain.InstallmentPlan, error) {
	var plan domain.InstallmentPlan
	var idStr string
	var nextDue sql.NullTime
	err := row.Scan(&idStr, &plan.CustomerKey, &plan.Breakdown.ItemPrice, &plan.Breakdown.UpfrontAmount,
		&plan.Breakdown.RemainingBase, &plan.Breakdown.MarkupPercent, &plan.Breakdown.MarkupAmount,
		&plan.Breakdown.MonthlyAmount, &plan.Breakdown.NumberOfPayments, &plan.Breakdown.TotalCost,
		&plan.Breakdown.RoundingAdjustment, &plan.Status, &plan.StartDate, &nextDue,
		&plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	plan.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid plan id %q: %w", idStr, err)
	}
	if nextDue.Valid {
		t := nextDue.Time
		plan.NextPaymentDueAt = &t
	}
	return &plan, nil
}
