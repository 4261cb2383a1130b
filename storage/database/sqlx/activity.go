package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/activity"
)

type (
	activityRow struct {
		ID                  string      `db:"id"`
		Title               string      `db:"title"`
		Description         string      `db:"description"`
		Content             string      `db:"content"`
		AlgorithmCorrection null.String `db:"algorithm_correction"`
		CodeCorrection      null.String `db:"code_correction"`
		CategoryID          string      `db:"category_id"`
		LevelID             string      `db:"level_id"`
		CreatedBy           string      `db:"created_by"`
		IsPublished         bool        `db:"is_published"`
		CreatedAt           time.Time   `db:"created_at"`
		UpdatedAt           time.Time   `db:"updated_at"`
	}

	assetRow struct {
		ID         string    `db:"id"`
		ActivityID string    `db:"activity_id"`
		Name       string    `db:"name"`
		FileType   string    `db:"file_type"`
		FileSize   int64     `db:"file_size"`
		FileURL    string    `db:"file_url"`
		CreatedAt  time.Time `db:"created_at"`
	}

	taxonomyRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
)

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo activityRepository) row(act activity.Activity) activityRow {
	return activityRow{
		ID:                  act.ID,
		Title:               act.Title,
		Description:         act.Description,
		Content:             act.Content,
		AlgorithmCorrection: act.AlgorithmCorrection,
		CodeCorrection:      act.CodeCorrection,
		CategoryID:          act.CategoryID,
		LevelID:             act.LevelID,
		CreatedBy:           act.CreatedBy,
		IsPublished:         act.IsPublished,
		CreatedAt:           act.CreatedAt.UTC(),
		UpdatedAt:           act.UpdatedAt.UTC(),
	}
}

func (repo activityRepository) unrow(row activityRow) activity.Activity {
	return activity.Activity{
		ID:                  row.ID,
		Title:               row.Title,
		Description:         row.Description,
		Content:             row.Content,
		AlgorithmCorrection: row.AlgorithmCorrection,
		CodeCorrection:      row.CodeCorrection,
		CategoryID:          row.CategoryID,
		LevelID:             row.LevelID,
		CreatedBy:           row.CreatedBy,
		IsPublished:         row.IsPublished,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func (repo activityRepository) unrowAsset(row assetRow) activity.Asset {
	return activity.Asset{
		ID:         row.ID,
		ActivityID: row.ActivityID,
		Name:       row.Name,
		FileType:   row.FileType,
		FileSize:   row.FileSize,
		FileURL:    row.FileURL,
		CreatedAt:  row.CreatedAt,
	}
}

func (repo activityRepository) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	act.ID = uuid.New().String()
	row := repo.row(act)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO activities (id, title, description, content, algorithm_correction, code_correction,
		                        category_id, level_id, created_by, is_published, created_at, updated_at)
		VALUES (:id, :title, :description, :content, :algorithm_correction, :code_correction,
		        :category_id, :level_id, :created_by, :is_published, :created_at, :updated_at)`, row)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return repo.unrow(row), nil
}

func (repo activityRepository) CreateAssets(ctx context.Context, assets []activity.Asset) ([]activity.Asset, error) {
	if len(assets) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	rows := make([]assetRow, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, assetRow{
			ID:         uuid.New().String(),
			ActivityID: a.ActivityID,
			Name:       a.Name,
			FileType:   a.FileType,
			FileSize:   a.FileSize,
			FileURL:    a.FileURL,
			CreatedAt:  now,
		})
	}

	// one batch insert for the whole submission
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO assets (id, activity_id, name, file_type, file_size, file_url, created_at)
		VALUES (:id, :activity_id, :name, :file_type, :file_size, :file_url, :created_at)`, rows)
	if err != nil {
		return nil, errors.Wrap(err, "inserting assets")
	}

	inserted := make([]activity.Asset, 0, len(rows))
	for _, row := range rows {
		inserted = append(inserted, repo.unrowAsset(row))
	}
	return inserted, nil
}

func (repo activityRepository) QueryAllActivities(ctx context.Context, ordering ...core.DBOrdering) ([]activity.Activity, error) {
	var rows []activityRow
	query := `SELECT * FROM activities` + orderBy(ordering, "created_at DESC")
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}

	activities := make([]activity.Activity, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, repo.unrow(row))
		ids = append(ids, row.ID)
	}
	if len(ids) == 0 {
		return activities, nil
	}

	assetQuery, args, err := sqlx.In(`SELECT * FROM assets WHERE activity_id IN (?) ORDER BY created_at`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "expanding activity ids")
	}
	var assetRows []assetRow
	if err := repo.db.SelectContext(ctx, &assetRows, repo.db.Rebind(assetQuery), args...); err != nil {
		return nil, errors.Wrap(err, "querying assets")
	}

	byActivity := make(map[string][]activity.Asset, len(ids))
	for _, row := range assetRows {
		byActivity[row.ActivityID] = append(byActivity[row.ActivityID], repo.unrowAsset(row))
	}
	for i := range activities {
		activities[i].Assets = byActivity[activities[i].ID]
	}
	return activities, nil
}

func (repo activityRepository) QueryAllCategories(ctx context.Context, ordering ...core.DBOrdering) ([]activity.Category, error) {
	var rows []taxonomyRow
	query := `SELECT * FROM categories` + orderBy(ordering, "name ASC")
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	cats := make([]activity.Category, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, activity.Category(row))
	}
	return cats, nil
}

func (repo activityRepository) QueryAllLevels(ctx context.Context, ordering ...core.DBOrdering) ([]activity.Level, error) {
	var rows []taxonomyRow
	query := `SELECT * FROM levels` + orderBy(ordering, "name ASC")
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying levels")
	}
	lvls := make([]activity.Level, 0, len(rows))
	for _, row := range rows {
		lvls = append(lvls, activity.Level(row))
	}
	return lvls, nil
}

func (repo activityRepository) CountActivities(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM activities`); err != nil {
		return 0, errors.Wrap(err, "counting activities")
	}
	return count, nil
}

func (repo activityRepository) CountAssets(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM assets`); err != nil {
		return 0, errors.Wrap(err, "counting assets")
	}
	return count, nil
}
