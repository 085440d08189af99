package validation

import "testing"

func TestNewReport(t *testing.T) {
	r := NewReport()
	if !r.Valid {
		t.Error("new report should be valid")
	}
	if len(r.Errors) != 0 || len(r.Warnings) != 0 || len(r.Info) != 0 {
		t.Error("new report should have empty slices")
	}
	if r.Summary != "0 errors, 0 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
}

func TestAddError(t *testing.T) {
	r := NewReport()
	r.AddError(Result{Level: LevelSchema, Message: "bad value"})
	if r.Valid {
		t.Error("report with error should be invalid")
	}
	if len(r.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(r.Errors))
	}
	if r.Errors[0].Severity != SeverityError {
		t.Error("AddError should set severity to error")
	}
	if r.Summary != "1 errors, 0 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
}

func TestAddWarning(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelGraph, Message: "heads up"})
	if !r.Valid {
		t.Error("warnings should not invalidate report")
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Severity != SeverityWarning {
		t.Errorf("unexpected warnings: %+v", r.Warnings)
	}
}

func TestAddInfo(t *testing.T) {
	r := NewReport()
	r.AddInfo(Result{Level: LevelRouting, Message: "fyi"})
	if !r.Valid {
		t.Error("info should not invalidate report")
	}
	if len(r.Info) != 1 {
		t.Fatalf("expected 1 info, got %d", len(r.Info))
	}
}

func TestMerge(t *testing.T) {
	r1 := NewReport()
	r1.AddWarning(Result{Level: LevelSchema, Message: "warn1"})

	r2 := NewReport()
	r2.AddError(Result{Level: LevelGraph, Message: "err1"})
	r2.AddWarning(Result{Level: LevelGraph, Message: "warn2"})
	r2.AddInfo(Result{Level: LevelGraph, Message: "info1"})

	r1.Merge(r2)
	r1.Merge(nil)

	if r1.Valid {
		t.Error("merged report should be invalid when other has errors")
	}
	if len(r1.Errors) != 1 || len(r1.Warnings) != 2 || len(r1.Info) != 1 {
		t.Errorf("unexpected counts: %s", r1.Summary)
	}
	if r1.Summary != "1 errors, 2 warnings, 1 info" {
		t.Errorf("unexpected summary: %s", r1.Summary)
	}
}

func TestFind(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelGraph, Message: "a", Path: "levels[0].areas[1]"})
	r.AddInfo(Result{Level: LevelGraph, Message: "b", Path: "levels[0].areas[1]"})
	r.AddError(Result{Level: LevelSchema, Message: "c", Path: "levels[1]"})

	if got := r.Find("levels[0].areas[1]"); len(got) != 2 {
		t.Errorf("Find returned %d results, want 2", len(got))
	}
	if got := r.Find("levels[9]"); len(got) != 0 {
		t.Errorf("Find returned %d results for unknown path", len(got))
	}
}
