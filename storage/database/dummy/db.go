package dummydb

import (
	"sync"

	"github.com/trezcool/shule/core/activity"
	"github.com/trezcool/shule/core/student"
)

type (
	DB struct {
		student  *studentTable
		activity *activityTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	activityTable struct {
		sync.RWMutex
		activities map[string]*activity.Activity
		assets     map[string]*activity.Asset
		categories map[string]*activity.Category
		levels     map[string]*activity.Level
	}
)

func Open() (*DB, error) {
	db := &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		activity: &activityTable{
			activities: make(map[string]*activity.Activity),
			assets:     make(map[string]*activity.Asset),
			categories: make(map[string]*activity.Category),
			levels:     make(map[string]*activity.Level),
		},
	}
	return db, nil
}
