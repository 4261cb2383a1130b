package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

func newTestLogger() (*RollbarLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "TEST : ", log.LstdFlags), core.NewConfig())
	logger.Enable(false)
	return logger, &buf
}

func TestRollbarLogger_Close(t *testing.T) {
	logger, _ := newTestLogger()
	if err := logger.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger, _ := newTestLogger()
	defer func() { _ = logger.Close() }()

	std := student.Student{ID: "std1", Email: "t@test.test"}
	extra := map[string]interface{}{"code": "23505"}

	args := logger.prepare("boom", []interface{}{std, extra})
	if len(args) != 2 {
		t.Fatalf("len(args) = %d, want 2; the student must be stripped into person tagging", len(args))
	}
	if args[0] != "boom" {
		t.Errorf("args[0] = %v, want the message", args[0])
	}
	if _, ok := args[1].(map[string]interface{}); !ok {
		t.Errorf("args[1] = %T, want map[string]interface{}", args[1])
	}
}
