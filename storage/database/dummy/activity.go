package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/activity"
)

type ActivityRepository struct {
	db *activityTable

	// failure injection & call counts for tests
	CreateActivityErr   error
	CreateAssetsErr     error
	CategoriesErr       error
	LevelsErr           error
	CountActivitiesErr  error
	CreateActivityCalls int
	CreateAssetsCalls   int
}

var _ activity.Repository = (*ActivityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db.activity}
}

// SeedCategory inserts a category directly; the domain only reads taxonomy.
func (repo *ActivityRepository) SeedCategory(name string) activity.Category {
	repo.db.Lock()
	defer repo.db.Unlock()

	cat := activity.Category{ID: uuid.New().String(), Name: name}
	repo.db.categories[cat.ID] = &cat
	return cat
}

// SeedLevel inserts a level directly; the domain only reads taxonomy.
func (repo *ActivityRepository) SeedLevel(name string) activity.Level {
	repo.db.Lock()
	defer repo.db.Unlock()

	lvl := activity.Level{ID: uuid.New().String(), Name: name}
	repo.db.levels[lvl.ID] = &lvl
	return lvl
}

func (repo *ActivityRepository) CreateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.CreateActivityCalls++
	if repo.CreateActivityErr != nil {
		return activity.Activity{}, repo.CreateActivityErr
	}
	act.ID = uuid.New().String()
	repo.db.activities[act.ID] = &act
	return act, nil
}

func (repo *ActivityRepository) CreateAssets(_ context.Context, assets []activity.Asset) ([]activity.Asset, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.CreateAssetsCalls++
	if repo.CreateAssetsErr != nil {
		return nil, repo.CreateAssetsErr
	}
	inserted := make([]activity.Asset, 0, len(assets))
	for _, a := range assets {
		a.ID = uuid.New().String()
		repo.db.assets[a.ID] = &a
		inserted = append(inserted, a)
	}
	return inserted, nil
}

func (repo *ActivityRepository) QueryAllActivities(_ context.Context, ordering ...core.DBOrdering) ([]activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	activities := make([]activity.Activity, 0, len(repo.db.activities))
	for _, act := range repo.db.activities {
		a := *act
		a.Assets = repo.queryAssets(a.ID)
		activities = append(activities, a)
	}
	sort.Slice(activities, func(i, j int) bool { return activities[i].CreatedAt.After(activities[j].CreatedAt) })
	return activities, nil
}

func (repo *ActivityRepository) queryAssets(activityID string) []activity.Asset {
	var assets []activity.Asset
	for _, a := range repo.db.assets {
		if a.ActivityID == activityID {
			assets = append(assets, *a)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets
}

func (repo *ActivityRepository) QueryAllCategories(_ context.Context, ordering ...core.DBOrdering) ([]activity.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.CategoriesErr != nil {
		return nil, repo.CategoriesErr
	}
	cats := make([]activity.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *ActivityRepository) QueryAllLevels(_ context.Context, ordering ...core.DBOrdering) ([]activity.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.LevelsErr != nil {
		return nil, repo.LevelsErr
	}
	lvls := make([]activity.Level, 0, len(repo.db.levels))
	for _, lvl := range repo.db.levels {
		lvls = append(lvls, *lvl)
	}
	sort.Slice(lvls, func(i, j int) bool { return lvls[i].Name < lvls[j].Name })
	return lvls, nil
}

func (repo *ActivityRepository) CountActivities(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if repo.CountActivitiesErr != nil {
		return 0, repo.CountActivitiesErr
	}
	return len(repo.db.activities), nil
}

func (repo *ActivityRepository) CountAssets(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.assets), nil
}
