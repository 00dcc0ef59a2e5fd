package view

import (
	"context"
	"testing"
	"time"

	"github.com/stsysd/nisshi/model"
)

func TestListViewLoadAndSearch(t *testing.T) {
	f := newFixture(t)
	base := midMonth()
	f.addDiary(t, "keyboard wiring", model.Troubleshooting{}, base, "hw")
	f.addDiary(t, "firmware flash", model.Troubleshooting{}, base.Add(time.Hour), "qmk")

	v := NewListView(f.userID, f.engine, f.store)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snap := v.Snapshot()
	if snap.Status != StatusReady {
		t.Fatalf("Expected ready, got %v", snap.Status)
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(snap.Entries))
	}
	if len(snap.Projects) != 1 {
		t.Errorf("Expected 1 project in dropdown, got %d", len(snap.Projects))
	}

	// デフォルトは新しい順
	if snap.Entries[0].Title != "firmware flash" {
		t.Errorf("Expected newest first, got %s", snap.Entries[0].Title)
	}

	// 検索は取得なしの純粋な絞り込み
	v.SetSearch("QMK")
	snap = v.Snapshot()
	if len(snap.Entries) != 1 || snap.Entries[0].Title != "firmware flash" {
		t.Errorf("Expected only firmware flash for QMK, got %v", snap.Entries)
	}

	// 検索語を消すと全件に戻る
	v.SetSearch("")
	if got := len(v.Snapshot().Entries); got != 2 {
		t.Errorf("Expected 2 entries after clearing search, got %d", got)
	}
}

func TestListViewToggleSort(t *testing.T) {
	f := newFixture(t)
	base := midMonth()
	f.addDiary(t, "older", model.Troubleshooting{}, base)
	f.addDiary(t, "newer", model.Troubleshooting{}, base.Add(time.Hour))

	v := NewListView(f.userID, f.engine, f.store)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	v.ToggleSort()
	snap := v.Snapshot()
	if snap.Desc {
		t.Error("Expected ascending after toggle")
	}
	if snap.Entries[0].Title != "older" {
		t.Errorf("Expected oldest first, got %s", snap.Entries[0].Title)
	}

	v.ToggleSort()
	if v.Snapshot().Entries[0].Title != "newer" {
		t.Error("Expected newest first after second toggle")
	}
}

func TestListViewFilterCache(t *testing.T) {
	f := newFixture(t)
	f.addDiary(t, "entry", model.Troubleshooting{}, midMonth())

	v := NewListView(f.userID, f.engine, f.store)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// 個別プロジェクトに切り替え
	only := model.FilterByProject(f.project.ID)
	if err := v.SetProjectFilter(context.Background(), only); err != nil {
		t.Fatalf("SetProjectFilter failed: %v", err)
	}
	if got := len(v.Snapshot().Entries); got != 1 {
		t.Errorf("Expected 1 entry, got %d", got)
	}

	// 以降の切り替えはキャッシュから提供される（新規追加は見えない）
	f.addDiary(t, "added later", model.Troubleshooting{}, midMonth().Add(time.Hour))

	if err := v.SetProjectFilter(context.Background(), model.AllProjects()); err != nil {
		t.Fatalf("SetProjectFilter failed: %v", err)
	}
	if got := len(v.Snapshot().Entries); got != 1 {
		t.Errorf("Expected cached all view with 1 entry, got %d", got)
	}

	if err := v.SetProjectFilter(context.Background(), only); err != nil {
		t.Fatalf("SetProjectFilter failed: %v", err)
	}
	if got := len(v.Snapshot().Entries); got != 1 {
		t.Errorf("Expected cached filtered view with 1 entry, got %d", got)
	}
}

func TestListViewRemove(t *testing.T) {
	f := newFixture(t)
	d := f.addDiary(t, "to delete", model.Troubleshooting{}, midMonth())
	f.addDiary(t, "to keep", model.Troubleshooting{}, midMonth().Add(time.Hour))

	v := NewListView(f.userID, f.engine, f.store)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// まず個別フィルタのキャッシュも作っておく
	only := model.FilterByProject(f.project.ID)
	if err := v.SetProjectFilter(context.Background(), only); err != nil {
		t.Fatalf("SetProjectFilter failed: %v", err)
	}

	if err := v.Remove(context.Background(), f.project.ID, d.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// すべてのキャッシュ済みビューから消えること
	if got := v.Snapshot().Entries; len(got) != 1 || got[0].Title != "to keep" {
		t.Errorf("Expected only to keep in filtered view, got %v", got)
	}
	if err := v.SetProjectFilter(context.Background(), model.AllProjects()); err != nil {
		t.Fatalf("SetProjectFilter failed: %v", err)
	}
	if got := v.Snapshot().Entries; len(got) != 1 || got[0].Title != "to keep" {
		t.Errorf("Expected only to keep in all view, got %v", got)
	}
}

func TestListViewRemoveFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	d := f.addDiary(t, "kept", model.Troubleshooting{}, midMonth())

	v := NewListView(f.userID, f.engine, f.store)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	f.store.failDelete = true
	if err := v.Remove(context.Background(), f.project.ID, d.ID); err == nil {
		t.Fatal("Expected remove error, got nil")
	}
	if got := len(v.Snapshot().Entries); got != 1 {
		t.Errorf("Expected entries to be untouched, got %d", got)
	}
}

func TestListViewInvalidate(t *testing.T) {
	f := newFixture(t)
	f.addDiary(t, "entry", model.Troubleshooting{}, midMonth())

	v := NewListView(f.userID, f.engine, f.store)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	v.SetSearch("entry")
	v.ToggleSort()

	v.Invalidate()
	snap := v.Snapshot()
	if snap.Status != StatusIdle {
		t.Errorf("Expected idle after invalidate, got %v", snap.Status)
	}
	if snap.Search != "" || !snap.Desc {
		t.Error("Expected search and sort to be reset")
	}
	if len(snap.Entries) != 0 {
		t.Errorf("Expected no entries after invalidate, got %d", len(snap.Entries))
	}
}

func TestListViewInvalidateDiscardsFetch(t *testing.T) {
	f := newFixture(t)
	f.addDiary(t, "entry", model.Troubleshooting{}, midMonth())

	v := NewListView(f.userID, f.engine, f.store)

	// 取得の応答が返る前に破棄が走るように割り込む
	f.store.listDiariesHook = func() {
		f.store.listDiariesHook = nil
		v.Invalidate()
	}
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snap := v.Snapshot()
	if len(snap.Entries) != 0 {
		t.Errorf("Expected late fetch response to be discarded, got %d entries", len(snap.Entries))
	}
	if snap.Status != StatusIdle {
		t.Errorf("Expected idle after invalidate, got %v", snap.Status)
	}
}
