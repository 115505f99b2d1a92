package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SEED_CATEGORIES_FILE", filepath.Join(dir, "missing.yaml"))
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out, logs bytes.Buffer
	root := newRootCmd(&logs)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCategoriesCommand(t *testing.T) {
	out, err := runCmd(t, "categories")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ID", "Salary", "Investments", "Groceries", "Rent", "Utilities"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// income first
	if strings.Index(out, "Investments") > strings.Index(out, "Groceries") {
		t.Errorf("income categories should be listed first:\n%s", out)
	}
}

func TestCategoriesAddCommand(t *testing.T) {
	out, err := runCmd(t, "categories", "add", "Gifts", "--type", "income")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `Added income category "Gifts"`) {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := runCmd(t, "categories", "add", " "); err == nil {
		t.Fatal("blank name must fail")
	}
}

func TestSummaryCommandEmptyLedger(t *testing.T) {
	out, err := runCmd(t, "summary")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Balance", "$0.00", "MONTH", "No expenses recorded"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = runCmd(t, "summary", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"totals"`) || !strings.Contains(out, `"monthly"`) {
		t.Fatalf("unexpected JSON %s", out)
	}
}

func TestExportCommandEmptyLedger(t *testing.T) {
	out, err := runCmd(t, "export")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "nothing written") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runCmd(t, "export", "--stdout")
	if err != nil || out != "" {
		t.Fatalf("empty ledger must print nothing: %q %v", out, err)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("PORT", "abc")
	dir := t.TempDir()
	var out, logs bytes.Buffer
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SEED_CATEGORIES_FILE", filepath.Join(dir, "missing.yaml"))
	root := newRootCmd(&logs)
	root.SetOut(&out)
	root.SetArgs([]string{"categories"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCategoryMutationsWarnAboutRunningServer(t *testing.T) {
	for _, sub := range []string{"add", "delete"} {
		out, err := runCmd(t, "categories", sub, "--help")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "while fintrack serve is stopped") {
			t.Errorf("%s help lacks the offline note:\n%s", sub, out)
		}
	}
}
