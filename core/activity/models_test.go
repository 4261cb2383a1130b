package activity

import (
	"testing"
	"time"

	"github.com/trezcool/shule/core"
)

func TestNewActivity_Validate(t *testing.T) {
	validate, _ := core.NewValidator()

	tests := []struct {
		name    string
		na      NewActivity
		wantErr bool
	}{
		{
			name: "ok",
			na: NewActivity{
				Title: "Loops", Description: "Intro to loops", Content: "<p>for</p>",
				CategoryID: "cat1", LevelID: "lvl1",
			},
		},
		{
			name: "missing title",
			na: NewActivity{
				Description: "Intro to loops", Content: "<p>for</p>",
				CategoryID: "cat1", LevelID: "lvl1",
			},
			wantErr: true,
		},
		{
			name: "whitespace-only content",
			na: NewActivity{
				Title: "Loops", Description: "Intro to loops", Content: "   \n\t ",
				CategoryID: "cat1", LevelID: "lvl1",
			},
			wantErr: true,
		},
		{
			name: "missing taxonomy",
			na: NewActivity{
				Title: "Loops", Description: "Intro to loops", Content: "<p>for</p>",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.na.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewActivity_Validate_trimsTitleNotContent(t *testing.T) {
	validate, _ := core.NewValidator()

	na := NewActivity{
		Title: "  Loops  ", Description: " Intro ", Content: "  <p>for</p>  ",
		CategoryID: "cat1", LevelID: "lvl1",
	}
	if err := na.Validate(validate); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if na.Title != "Loops" {
		t.Errorf("Title = %q, want %q", na.Title, "Loops")
	}
	if na.Description != "Intro" {
		t.Errorf("Description = %q, want %q", na.Description, "Intro")
	}
	if na.Content != "  <p>for</p>  " {
		t.Errorf("Content = %q; surrounding whitespace must be preserved", na.Content)
	}
}

func Test_payload(t *testing.T) {
	now := time.Date(2021, time.March, 8, 12, 0, 0, 0, time.UTC)
	base := NewActivity{
		Title: "Loops", Description: "Intro to loops", Content: "<p>for</p>",
		CategoryID: "cat1", LevelID: "lvl1",
	}

	t.Run("required fields", func(t *testing.T) {
		act := base.payload("std1", now)
		if act.Title != base.Title || act.Description != base.Description || act.Content != base.Content {
			t.Error("required fields not carried over")
		}
		if act.CreatedBy != "std1" {
			t.Errorf("CreatedBy = %s, want std1", act.CreatedBy)
		}
		if !act.IsPublished {
			t.Error("new activities must be published right away")
		}
		if !act.CreatedAt.Equal(now) || !act.UpdatedAt.Equal(now) {
			t.Error("timestamps not set")
		}
	})

	t.Run("blank corrections omitted", func(t *testing.T) {
		na := base
		na.AlgorithmCorrection = "   "
		na.CodeCorrection = ""
		act := na.payload("std1", now)
		if act.AlgorithmCorrection.Valid {
			t.Error("whitespace-only AlgorithmCorrection must be omitted")
		}
		if act.CodeCorrection.Valid {
			t.Error("empty CodeCorrection must be omitted")
		}
	})

	t.Run("corrections kept verbatim", func(t *testing.T) {
		na := base
		na.AlgorithmCorrection = "  step 1  "
		na.CodeCorrection = "print('hi')"
		act := na.payload("std1", now)
		if !act.AlgorithmCorrection.Valid || act.AlgorithmCorrection.String != "  step 1  " {
			t.Errorf("AlgorithmCorrection = %v; raw value must be stored", act.AlgorithmCorrection)
		}
		if !act.CodeCorrection.Valid || act.CodeCorrection.String != "print('hi')" {
			t.Errorf("CodeCorrection = %v", act.CodeCorrection)
		}
	})
}
