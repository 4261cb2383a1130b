package activity

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

var (
	// errors
	ErrSubmissionInFlight = errors.New("a submission is already in progress")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		// CreateAssets inserts all rows as a single batch.
		CreateAssets(ctx context.Context, assets []Asset) ([]Asset, error)
		// QueryAllActivities returns activities joined with their assets.
		QueryAllActivities(ctx context.Context, ordering ...core.DBOrdering) ([]Activity, error)
		QueryAllCategories(ctx context.Context, ordering ...core.DBOrdering) ([]Category, error)
		QueryAllLevels(ctx context.Context, ordering ...core.DBOrdering) ([]Level, error)
		CountActivities(ctx context.Context) (int, error)
		CountAssets(ctx context.Context) (int, error)
	}

	Service interface {
		// Taxonomy loads categories and levels concurrently. A failed
		// branch is logged and left nil rather than failing the call.
		Taxonomy(ctx context.Context) Taxonomy
		Submit(ctx context.Context, actor student.Student, na NewActivity, files []StagedFile, onProgress ...ProgressFunc) (SubmitResult, error)
		QueryAll(ctx context.Context) ([]Activity, error)
		CountActivities(ctx context.Context) (int, error)
		CountAssets(ctx context.Context) (int, error)
	}

	service struct {
		repo     Repository
		blob     core.BlobStore
		logger   core.Logger
		validate *validator.Validate

		mu       sync.Mutex
		inFlight map[string]struct{} // creator ids with a running submission
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, blob core.BlobStore, logger core.Logger, validate *validator.Validate) Service {
	return &service{
		repo:     repo,
		blob:     blob,
		logger:   logger,
		validate: validate,
		inFlight: make(map[string]struct{}),
	}
}

func (svc *service) Taxonomy(ctx context.Context) Taxonomy {
	var tax Taxonomy
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		cats, err := svc.repo.QueryAllCategories(ctx, core.DBOrdering{Field: "name", Ascending: true})
		if err != nil {
			svc.logger.Error("loading categories", err)
			return
		}
		tax.Categories = cats
	}()
	go func() {
		defer wg.Done()
		lvls, err := svc.repo.QueryAllLevels(ctx, core.DBOrdering{Field: "name", Ascending: true})
		if err != nil {
			svc.logger.Error("loading levels", err)
			return
		}
		tax.Levels = lvls
	}()
	wg.Wait()
	return tax
}

// Submit runs the whole create-and-attach sequence: validate, insert the
// activity, upload staged files one by one in staging order, then insert
// all asset rows as one batch. Each step's failure aborts the remaining
// steps; already-persisted state is not rolled back (the returned
// SubmitResult carries the created activity id so the failure can be
// logged against it).
func (svc *service) Submit(
	ctx context.Context,
	actor student.Student,
	na NewActivity,
	files []StagedFile,
	onProgress ...ProgressFunc,
) (SubmitResult, error) {
	var res SubmitResult

	if err := na.Validate(svc.validate); err != nil {
		return res, err
	}

	// one submission at a time per creator; the guard also covers the
	// sequence's remote calls so it cannot be restarted mid-upload.
	if !svc.beginSubmission(actor.ID) {
		return res, ErrSubmissionInFlight
	}
	defer svc.endSubmission(actor.ID)

	act, err := svc.repo.CreateActivity(ctx, na.payload(actor.ID, nowFunc().UTC()))
	if err != nil {
		return res, errors.Wrap(err, "creating activity")
	}
	res.Activity = act

	res.Files = make([]FileProgress, len(files))
	for i, f := range files {
		res.Files[i] = FileProgress{Name: f.Name, State: UploadPending}
	}
	emit := func(i int) {
		for _, fn := range onProgress {
			fn(res.Files[i])
		}
	}

	assets := make([]Asset, 0, len(files))
	for i, f := range files {
		res.Files[i].State = UploadInProgress
		emit(i)

		// the per-file timestamp keeps concurrent submissions and repeated
		// filenames within one submission from colliding
		path := fmt.Sprintf("%s/%d-%s", act.ID, nowFunc().UnixMilli(), f.Name)
		if err := svc.blob.Upload(ctx, path, f.ContentType, bytes.NewReader(f.Content)); err != nil {
			res.Files[i].State = UploadFailed
			emit(i)
			return res, errors.Wrapf(err, "uploading %s", f.Name)
		}
		res.Files[i].State = UploadDone
		emit(i)

		assets = append(assets, Asset{
			ActivityID: act.ID,
			Name:       f.Name,
			FileType:   f.ContentType,
			FileSize:   f.Size(),
			FileURL:    svc.blob.PublicURL(path),
		})
	}

	if len(assets) > 0 {
		inserted, err := svc.repo.CreateAssets(ctx, assets)
		if err != nil {
			return res, errors.Wrap(err, "saving assets")
		}
		res.Activity.Assets = inserted
	}
	return res, nil
}

func (svc *service) beginSubmission(creatorID string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if _, ok := svc.inFlight[creatorID]; ok {
		return false
	}
	svc.inFlight[creatorID] = struct{}{}
	return true
}

func (svc *service) endSubmission(creatorID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.inFlight, creatorID)
}

func (svc *service) QueryAll(ctx context.Context) ([]Activity, error) {
	return svc.repo.QueryAllActivities(ctx, core.DBOrdering{Field: "created_at", Ascending: false})
}

func (svc *service) CountActivities(ctx context.Context) (int, error) {
	return svc.repo.CountActivities(ctx)
}

func (svc *service) CountAssets(ctx context.Context) (int, error) {
	return svc.repo.CountAssets(ctx)
}
