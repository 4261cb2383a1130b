package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/activity"
	testutil "github.com/trezcool/shule/tests"
)

var errPermissionDenied = httpErr{Error: "permission denied"}

func Test_activityApi_taxonomy(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateStudent(t, app.stdRepo, "admin@test.cd", "Admin", "LolC@t123", true)
	plain := testutil.CreateStudent(t, app.stdRepo, "plain@test.cd", "Plain", "LolC@t123", false)

	algo := app.actRepo.SeedCategory("Algorithms")
	web := app.actRepo.SeedCategory("Web")
	easy := app.actRepo.SeedLevel("Easy")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, plain), wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)},
		{
			name: "Get taxonomy", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallObj(t, activity.Taxonomy{
				Categories: []activity.Category{algo, web},
				Levels:     []activity.Level{easy},
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/taxonomy"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_activityApi_taxonomy_degraded(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateStudent(t, app.stdRepo, "admin@test.cd", "Admin", "LolC@t123", true)
	easy := app.actRepo.SeedLevel("Easy")
	app.actRepo.CategoriesErr = errors.New("boom")

	// a failed taxonomy branch never fails the call
	tt := httpTest{
		name: "categories degraded", wantCode: http.StatusOK,
		wantData: marchallObj(t, activity.Taxonomy{Levels: []activity.Level{easy}}),
	}
	req, rec := newAuthRequest(http.MethodGet, "/v1/taxonomy", getToken(t, admin))
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_activityApi_queryAll(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateStudent(t, app.stdRepo, "admin@test.cd", "Admin", "LolC@t123", true)
	cat := app.actRepo.SeedCategory("Algorithms")
	lvl := app.actRepo.SeedLevel("Easy")
	act := testutil.CreateActivity(t, app.actRepo, "Loops", cat.ID, lvl.ID, admin.ID)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, act)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/activities"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_activityApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateStudent(t, app.stdRepo, "admin@test.cd", "Admin", "LolC@t123", true)
	plain := testutil.CreateStudent(t, app.stdRepo, "plain@test.cd", "Plain", "LolC@t123", false)
	cat := app.actRepo.SeedCategory("Algorithms")
	lvl := app.actRepo.SeedLevel("Easy")

	fields := map[string]string{
		"title":       "Loops",
		"description": "Intro to loops",
		"content":     "<p>for i := range nums</p>",
		"category_id": cat.ID,
		"level_id":    lvl.ID,
	}

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/v1/activities", "", fields)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Admin required", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/v1/activities", getToken(t, plain), fields)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/v1/activities", getToken(t, admin), map[string]string{"title": "Loops"})
		app.server.ServeHTTP(rec, req)
		reqMsg := "this field is required"
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"description": reqMsg, "content": reqMsg, "category_id": reqMsg, "level_id": reqMsg,
			}),
		}
		checkCodeAndData(t, tt, rec)
		if app.actRepo.CreateActivityCalls != 0 {
			t.Errorf("failed! CreateActivityCalls = %d; want 0", app.actRepo.CreateActivityCalls)
		}
	})

	t.Run("create with files", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/v1/activities", getToken(t, admin), fields,
			formFile{name: "diagram.png", contentType: "image/png", content: []byte("png-bytes")},
			formFile{name: "exercise.pdf", contentType: "application/pdf", content: []byte("pdf-bytes")},
			formFile{name: "notes.txt", contentType: "text/plain", content: []byte("skipped")},
		)
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var res activity.SubmitResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if res.Activity.ID == "" {
			t.Fatal("failed! activity not created")
		}
		if res.Activity.CreatedBy != admin.ID {
			t.Errorf("failed! CreatedBy = %s; want %s", res.Activity.CreatedBy, admin.ID)
		}
		if !res.Activity.IsPublished {
			t.Error("failed! activity not published")
		}

		// the text file never makes it into staging
		if len(res.Activity.Assets) != 2 {
			t.Fatalf("failed! len(Assets) = %d; want 2", len(res.Activity.Assets))
		}
		paths := app.blob.Paths()
		if len(paths) != 2 {
			t.Fatalf("failed! len(paths) = %d; want 2", len(paths))
		}
		if !strings.HasSuffix(paths[0], "-diagram.png") || !strings.HasSuffix(paths[1], "-exercise.pdf") {
			t.Errorf("failed! paths = %v; want staging order", paths)
		}
		if app.actRepo.CreateAssetsCalls != 1 {
			t.Errorf("failed! CreateAssetsCalls = %d; want 1", app.actRepo.CreateAssetsCalls)
		}
	})

	t.Run("record insert failure", func(t *testing.T) {
		app := setup(t)
		admin := testutil.CreateStudent(t, app.stdRepo, "admin@test.cd", "Admin", "LolC@t123", true)
		cat := app.actRepo.SeedCategory("Algorithms")
		lvl := app.actRepo.SeedLevel("Easy")
		app.actRepo.CreateActivityErr = errors.New("connection reset")

		f := map[string]string{
			"title": "Loops", "description": "Intro", "content": "<p>x</p>",
			"category_id": cat.ID, "level_id": lvl.ID,
		}
		req, rec := newMultipartRequest(t, "/v1/activities", getToken(t, admin), f)
		app.server.ServeHTTP(rec, req)

		// remote failures surface as a gateway error with a clean message
		tt := httpTest{
			wantCode: http.StatusBadGateway,
			wantData: marchallObj(t, httpErr{Error: "connection reset"}),
		}
		checkCodeAndData(t, tt, rec)
		if len(app.logger.Entries()) == 0 {
			t.Error("failed! remote failure was not logged")
		}
	})

	t.Run("database error detail is logged, never surfaced", func(t *testing.T) {
		app := setup(t)
		admin := testutil.CreateStudent(t, app.stdRepo, "admin@test.cd", "Admin", "LolC@t123", true)
		cat := app.actRepo.SeedCategory("Algorithms")
		lvl := app.actRepo.SeedLevel("Easy")
		app.actRepo.CreateActivityErr = &pq.Error{
			Code:    "23505",
			Message: "duplicate key value violates unique constraint",
			Detail:  `Key (title)=(Loops) already exists.`,
			Hint:    "pick another title",
		}

		f := map[string]string{
			"title": "Loops", "description": "Intro", "content": "<p>x</p>",
			"category_id": cat.ID, "level_id": lvl.ID,
		}
		req, rec := newMultipartRequest(t, "/v1/activities", getToken(t, admin), f)
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadGateway,
			wantData: marchallObj(t, httpErr{Error: "pq: duplicate key value violates unique constraint"}),
		}
		checkCodeAndData(t, tt, rec)
		if strings.Contains(rec.Body.String(), "already exists") {
			t.Error("failed! driver detail leaked into the response")
		}

		entries := app.logger.Entries()
		if len(entries) != 1 {
			t.Fatalf("failed! len(entries) = %d; want 1", len(entries))
		}
		if !strings.Contains(entries[0], "23505") || !strings.Contains(entries[0], "already exists") {
			t.Errorf("failed! entry = %s; want code and detail logged", entries[0])
		}
	})
}
