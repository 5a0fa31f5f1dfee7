package runlog

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"specslice/internal/assemble"
	"specslice/internal/emit"
	"specslice/internal/opkey"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDecisions() []assemble.Decision {
	return []assemble.Decision{
		{Key: opkey.New("GET", "/pet"), Verdict: assemble.VerdictIgnore, Reason: "change to legacy operation"},
		{Key: opkey.New("PATCH", "/pet"), Verdict: assemble.VerdictInclude, Reason: "changed or added operation"},
	}
}

func TestRecordAndGet(t *testing.T) {
	db := openTestDB(t)
	output := []byte(`{"openapi": "3.0.0", "paths": {}}`)
	summary := emit.Summary{PathsKept: 1, OperationsKept: 2, ComponentsKept: 3}

	id, err := db.Record("main", "head", summary, sampleDecisions(), output)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty run id")
	}

	run, err := db.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run.BaseLabel != "main" || run.HeadLabel != "head" {
		t.Errorf("labels not round-tripped: %q %q", run.BaseLabel, run.HeadLabel)
	}
	if run.Summary != summary {
		t.Errorf("summary not round-tripped: %+v", run.Summary)
	}
	if !bytes.Equal(run.OutputJSON, output) {
		t.Errorf("output not round-tripped: %s", run.OutputJSON)
	}
	if len(run.Decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(run.Decisions))
	}
	if run.Decisions[0].Key != opkey.New("GET", "/pet") || run.Decisions[0].Verdict != assemble.VerdictIgnore {
		t.Errorf("first decision wrong: %+v", run.Decisions[0])
	}
	if run.Decisions[1].Reason != "changed or added operation" {
		t.Errorf("second decision reason wrong: %q", run.Decisions[1].Reason)
	}
}

func TestList(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 3; i++ {
		if _, err := db.Record("main", "head", emit.Summary{}, nil, []byte("{}")); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}
	runs, err := db.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected limit of 2 runs, got %d", len(runs))
	}
	for _, r := range runs {
		if r.OutputJSON != nil {
			t.Error("List must not load output bytes")
		}
	}
}

func TestGetNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Get("does-not-exist")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestDigestMatchesOutput(t *testing.T) {
	db := openTestDB(t)
	output := []byte(`{"paths": {}}`)
	id, err := db.Record("a", "b", emit.Summary{}, nil, output)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	id2, err := db.Record("a", "b", emit.Summary{}, nil, output)
	if err != nil {
		t.Fatalf("second Record failed: %v", err)
	}
	r1, err := db.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := db.Get(id2)
	if err != nil {
		t.Fatal(err)
	}
	// Identical outputs share a digest across distinct runs.
	if r1.Digest != r2.Digest {
		t.Errorf("digests differ for identical output: %s vs %s", r1.Digest, r2.Digest)
	}
}
