package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// StoredRequest is a persisted plan request with its generated options.
type StoredRequest struct {
	ID           int64
	UserID       string
	NumDays      int
	Servings     int
	Preferences  string
	ChosenOption int // -1 when the user never picked
	CreatedAt    string
	Options      []StoredOption
}

// StoredOption is one generated plan option belonging to a request.
type StoredOption struct {
	OptionIndex int
	Plan        DinnerPlan
}

// Repository persists plan requests and their options so later generations
// can learn from what the user actually chose.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveRequest stores a plan request and returns its ID.
func (r *Repository) SaveRequest(ctx context.Context, req Request) (int64, error) {
	prefs := req.Preferences
	if len(req.ExcludedIngredients) > 0 {
		if prefs != "" {
			prefs += "; "
		}
		prefs += "avoid: " + strings.Join(req.ExcludedIngredients, ", ")
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO dinner_plan_requests (user_id, num_days, servings, preferences) VALUES (?, ?, ?, ?)`,
		req.UserID, req.NumDays, req.Servings, prefs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save plan request: %w", err)
	}
	return res.LastInsertId()
}

// SaveOption stores one generated option for a request.
func (r *Repository) SaveOption(ctx context.Context, requestID int64, optionIndex int, plan DinnerPlan) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO dinner_plan_options (request_id, option_index, plan_json, reasoning) VALUES (?, ?, ?, ?)`,
		requestID, optionIndex, string(planJSON), plan.Reasoning,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan option: %w", err)
	}
	return nil
}

// UpdateChosenOption records which option the user picked.
func (r *Repository) UpdateChosenOption(ctx context.Context, requestID int64, optionIndex int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dinner_plan_requests SET chosen_option = ? WHERE id = ?`,
		optionIndex, requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to record chosen option: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("plan request %d not found", requestID)
	}
	return nil
}

type requestRow struct {
	ID           int64          `db:"id"`
	UserID       string         `db:"user_id"`
	NumDays      int            `db:"num_days"`
	Servings     int            `db:"servings"`
	Preferences  sql.NullString `db:"preferences"`
	ChosenOption sql.NullInt64  `db:"chosen_option"`
	CreatedAt    string         `db:"created_at"`
}

// Get loads one plan request with its options. Returns nil, nil when the
// request does not exist.
func (r *Repository) Get(ctx context.Context, requestID int64) (*StoredRequest, error) {
	var row requestRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, user_id, num_days, servings, preferences, chosen_option, created_at
		 FROM dinner_plan_requests WHERE id = ?`, requestID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan request %d: %w", requestID, err)
	}

	req, err := r.buildStoredRequest(ctx, row)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// History returns the most recent plan requests of a user, newest first,
// each with its options in index order.
func (r *Repository) History(ctx context.Context, userID string, limit int) ([]StoredRequest, error) {
	var rows []requestRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, num_days, servings, preferences, chosen_option, created_at
		 FROM dinner_plan_requests
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan history: %w", err)
	}

	history := make([]StoredRequest, 0, len(rows))
	for _, row := range rows {
		req, err := r.buildStoredRequest(ctx, row)
		if err != nil {
			return nil, err
		}
		history = append(history, req)
	}
	return history, nil
}

func (r *Repository) buildStoredRequest(ctx context.Context, row requestRow) (StoredRequest, error) {
	req := StoredRequest{
		ID:           row.ID,
		UserID:       row.UserID,
		NumDays:      row.NumDays,
		Servings:     row.Servings,
		Preferences:  row.Preferences.String,
		ChosenOption: -1,
		CreatedAt:    row.CreatedAt,
	}
	if row.ChosenOption.Valid {
		req.ChosenOption = int(row.ChosenOption.Int64)
	}

	type optionRow struct {
		OptionIndex int    `db:"option_index"`
		PlanJSON    string `db:"plan_json"`
	}
	var optRows []optionRow
	err := r.db.SelectContext(ctx, &optRows,
		`SELECT option_index, plan_json FROM dinner_plan_options
		 WHERE request_id = ? ORDER BY option_index`, row.ID)
	if err != nil {
		return StoredRequest{}, fmt.Errorf("failed to load plan options: %w", err)
	}
	for _, opt := range optRows {
		var plan DinnerPlan
		if err := json.Unmarshal([]byte(opt.PlanJSON), &plan); err != nil {
			return StoredRequest{}, fmt.Errorf("failed to decode stored plan: %w", err)
		}
		req.Options = append(req.Options, StoredOption{OptionIndex: opt.OptionIndex, Plan: plan})
	}
	return req, nil
}

// FormatHistory renders past requests and the options the user chose as
// plain text for the planning prompt.
func FormatHistory(history []StoredRequest) string {
	if len(history) == 0 {
		return "No previous dinner plans found."
	}

	var sb strings.Builder
	sb.WriteString("Previous Dinner Plans:")

	for i, req := range history {
		fmt.Fprintf(&sb, "\n\n%d. Request from %s:", i+1, req.CreatedAt)
		fmt.Fprintf(&sb, "\n   - %d days, %d servings", req.NumDays, req.Servings)
		if req.Preferences != "" {
			fmt.Fprintf(&sb, "\n   - Preferences: %s", req.Preferences)
		}

		if req.ChosenOption < 0 {
			continue
		}
		for _, opt := range req.Options {
			if opt.OptionIndex != req.ChosenOption {
				continue
			}
			fmt.Fprintf(&sb, "\n   - User CHOSE option #%d:", req.ChosenOption+1)
			for _, d := range opt.Plan.Dinners {
				fmt.Fprintf(&sb, "\n     * %s: %s", d.Day, d.RecipeTitle)
			}
			if opt.Plan.Reasoning != "" {
				fmt.Fprintf(&sb, "\n   - Reasoning: %s", opt.Plan.Reasoning)
			}
		}
	}
	return sb.String()
}
