package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SourceInfo describes where an extracted recipe came from.
type SourceInfo struct {
	SourceFile  string
	DriveFileID string
	PageNumber  int
	RecipeIndex int
}

type recipeRow struct {
	ID          int64          `db:"id"`
	TitleJP     string         `db:"title_jp"`
	TitleEN     string         `db:"title_en"`
	SummaryEN   sql.NullString `db:"summary_en"`
	Servings    int            `db:"servings"`
	TagsJSON    sql.NullString `db:"tags_json"`
	SourceFile  sql.NullString `db:"source_file"`
	DriveFileID sql.NullString `db:"drive_file_id"`
	PageNumber  sql.NullInt64  `db:"page_number"`
	RecipeIndex int            `db:"recipe_index"`
	CreatedAt   string         `db:"created_at"`
}

type ingredientRow struct {
	ID             int64          `db:"id"`
	RecipeID       int64          `db:"recipe_id"`
	NameJP         string         `db:"name_jp"`
	NameEN         string         `db:"name_en"`
	Quantity       sql.NullString `db:"quantity"`
	Unit           sql.NullString `db:"unit"`
	Category       sql.NullString `db:"category"`
	SauceReference sql.NullString `db:"sauce_reference"`
}

type instructionRow struct {
	ID         int64  `db:"id"`
	RecipeID   int64  `db:"recipe_id"`
	StepNumber int    `db:"step_number"`
	TextJP     string `db:"text_jp"`
	TextEN     string `db:"text_en"`
}

// Insert stores an extracted recipe with its ingredients and instructions in
// one transaction and returns the new recipe ID.
func (r *Repository) Insert(ctx context.Context, extract RecipeExtract, src SourceInfo) (int64, error) {
	if err := extract.Validate(); err != nil {
		return 0, err
	}

	tagsJSON, err := json.Marshal(extract.Tags)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal tags: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO recipes (title_jp, title_en, summary_en, servings, tags_json, source_file, drive_file_id, page_number, recipe_index)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		extract.TitleJP,
		extract.TitleEN,
		extract.SummaryEN,
		extract.Servings,
		string(tagsJSON),
		src.SourceFile,
		src.DriveFileID,
		nullableInt(src.PageNumber),
		src.RecipeIndex,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}

	recipeID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get recipe ID: %w", err)
	}

	for _, ing := range extract.Ingredients {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ingredients (recipe_id, name_jp, name_en, quantity, unit, category, sauce_reference)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			recipeID, ing.NameJP, ing.NameEN, ing.Quantity, ing.Unit, nullableString(ing.Category), nullableString(ing.SauceReference),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert ingredient %q: %w", ing.NameEN, err)
		}
	}

	for _, inst := range extract.Instructions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO instructions (recipe_id, step_number, text_jp, text_en)
			 VALUES (?, ?, ?, ?)`,
			recipeID, inst.StepNumber, inst.TextJP, inst.TextEN,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert instruction %d: %w", inst.StepNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit recipe: %w", err)
	}
	return recipeID, nil
}

// Get retrieves a recipe by its ID. Returns (nil, nil) when not found.
func (r *Repository) Get(ctx context.Context, id int64) (*Recipe, error) {
	var row recipeRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM recipes WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}

	rec := rowToRecipe(row)

	var ingRows []ingredientRow
	if err := r.db.SelectContext(ctx, &ingRows, "SELECT * FROM ingredients WHERE recipe_id = ? ORDER BY id", id); err != nil {
		return nil, fmt.Errorf("failed to get ingredients for recipe %d: %w", id, err)
	}
	for _, ir := range ingRows {
		rec.Ingredients = append(rec.Ingredients, Ingredient{
			NameJP:         ir.NameJP,
			NameEN:         ir.NameEN,
			Quantity:       ir.Quantity.String,
			Unit:           ir.Unit.String,
			Category:       ir.Category.String,
			SauceReference: ir.SauceReference.String,
		})
	}

	var instRows []instructionRow
	if err := r.db.SelectContext(ctx, &instRows, "SELECT * FROM instructions WHERE recipe_id = ? ORDER BY step_number", id); err != nil {
		return nil, fmt.Errorf("failed to get instructions for recipe %d: %w", id, err)
	}
	for _, ir := range instRows {
		rec.Instructions = append(rec.Instructions, Instruction{
			StepNumber: ir.StepNumber,
			TextJP:     ir.TextJP,
			TextEN:     ir.TextEN,
		})
	}

	return rec, nil
}

// GetByIDs retrieves recipes by ID, preserving input order. IDs with no
// matching recipe are skipped; absence is the caller's concern.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]Recipe, error) {
	var recipes []Recipe
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		recipes = append(recipes, *rec)
	}
	return recipes, nil
}

// List retrieves recipes ordered newest first, optionally filtered by tag.
// A limit of 0 means no limit.
func (r *Repository) List(ctx context.Context, tagFilter string, limit int) ([]Recipe, error) {
	query := "SELECT id FROM recipes"
	var args []interface{}

	if tagFilter != "" {
		query += " WHERE tags_json LIKE ?"
		args = append(args, fmt.Sprintf(`%%"%s"%%`, tagFilter))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return r.GetByIDs(ctx, ids)
}

// Search finds recipes whose title or ingredient names match the query.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Recipe, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.TrimSpace(query) + "%"

	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT id FROM (
			SELECT id FROM recipes WHERE title_en LIKE ? OR title_jp LIKE ?
			UNION
			SELECT recipe_id AS id FROM ingredients WHERE name_en LIKE ? OR name_jp LIKE ?
		 ) ORDER BY id LIMIT ?`,
		pattern, pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return r.GetByIDs(ctx, ids)
}

// AlreadyExtracted reports whether a recipe from this source file, page and
// index position has been stored before.
func (r *Repository) AlreadyExtracted(ctx context.Context, sourceFile string, pageNumber, recipeIndex int) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM recipes
		 WHERE source_file = ? AND COALESCE(page_number, 0) = ? AND recipe_index = ?`,
		sourceFile, pageNumber, recipeIndex,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check extraction state: %w", err)
	}
	return count > 0, nil
}

// Count returns the number of stored recipes.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM recipes"); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

func rowToRecipe(row recipeRow) *Recipe {
	rec := &Recipe{
		ID: row.ID,
		RecipeExtract: RecipeExtract{
			TitleJP:   row.TitleJP,
			TitleEN:   row.TitleEN,
			SummaryEN: row.SummaryEN.String,
			Servings:  row.Servings,
		},
		SourceFile:  row.SourceFile.String,
		DriveFileID: row.DriveFileID.String,
		PageNumber:  int(row.PageNumber.Int64),
		RecipeIndex: row.RecipeIndex,
		CreatedAt:   row.CreatedAt,
	}
	if row.TagsJSON.Valid && row.TagsJSON.String != "" {
		// Tag corruption is non-fatal; the recipe is still usable without tags.
		_ = json.Unmarshal([]byte(row.TagsJSON.String), &rec.Tags)
	}
	return rec
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
