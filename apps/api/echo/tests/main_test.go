package tests

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// run against the test configuration; debug is off so the error
	// handler renders the production JSON bodies
	if err := os.Setenv("ENV", "TEST"); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}
