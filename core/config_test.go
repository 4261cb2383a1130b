package core

import "testing"

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "TEST")
	conf := NewConfig()
	if !conf.TestMode {
		t.Error("TestMode must be set under ENV=TEST")
	}
	if conf.Debug {
		t.Error("Debug must default off under ENV=TEST")
	}

	t.Setenv("ENV", "")
	conf = NewConfig()
	if conf.TestMode {
		t.Error("TestMode must be off outside ENV=TEST")
	}
	if !conf.Debug {
		t.Error("Debug must default on locally")
	}
	if conf.Env != "DEV" {
		t.Errorf("Env = %s, want DEV", conf.Env)
	}
}
