package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/checkstyle/eclipse-cs/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ecsdoc-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM templates`).Scan(&count); err != nil {
		t.Fatalf("templates table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestOpenMemory(t *testing.T) {
	db, err := Open("file:ecsdoc-" + filepath.Base(t.TempDir()) + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.UpsertTemplate(TemplateRow{Path: "partials/a.html", Checksum: "1"}, "memory body", nil); err != nil {
		t.Fatalf("UpsertTemplate: %v", err)
	}
	cs, _ := db.GetChecksum("partials/a.html")
	if cs != "1" {
		t.Errorf("checksum = %q", cs)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := TemplateRow{
		Path:      "partials/faq.html",
		Title:     "FAQ",
		Checksum:  "abc123",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertTemplate(row, "Frequently asked questions.", []string{"/install"}); err != nil {
		t.Fatalf("UpsertTemplate: %v", err)
	}
	cs, err := db.GetChecksum("partials/faq.html")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertTemplate(TemplateRow{Path: "partials/index.html", Checksum: "1"}, "body", []string{"/faq"})
	_ = db.UpsertTemplate(TemplateRow{Path: "partials/basic/install.html", Checksum: "2"}, "body", []string{"/faq"})

	bl, err := db.Backlinks("/faq")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 || bl[0] != "partials/basic/install.html" {
		t.Fatalf("backlinks = %v", bl)
	}
}

func TestDeleteTemplate(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertTemplate(TemplateRow{Path: "partials/del.html", Checksum: "x"}, "body", []string{"/faq"})

	if err := db.DeleteTemplate("partials/del.html"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	cs, _ := db.GetChecksum("partials/del.html")
	if cs != "" {
		t.Errorf("deleted template still has checksum %q", cs)
	}
	bl, _ := db.Backlinks("/faq")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
}

func TestDeleteTemplate_ReportsFailure(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertTemplate(TemplateRow{Path: "partials/del.html", Checksum: "x"}, "body", nil)
	if _, err := db.conn.Exec(`DROP TABLE links`); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteTemplate("partials/del.html"); err == nil {
		t.Fatal("DeleteTemplate should report the failed statement")
	}
	cs, _ := db.GetChecksum("partials/del.html")
	if cs != "x" {
		t.Errorf("failed delete should roll back, checksum = %q", cs)
	}
}

func TestUpsertReplacesLinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertTemplate(TemplateRow{Path: "partials/up.html", Title: "Old", Checksum: "1"}, "old body", []string{"/x"})
	_ = db.UpsertTemplate(TemplateRow{Path: "partials/up.html", Title: "New", Checksum: "2"}, "new body", []string{"/y"})

	cs, _ := db.GetChecksum("partials/up.html")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	if bl, _ := db.Backlinks("/x"); len(bl) != 0 {
		t.Error("old link should be removed on upsert")
	}
	if bl, _ := db.Backlinks("/y"); len(bl) != 1 {
		t.Error("new link should exist")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("partials/nonexistent.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertTemplate(TemplateRow{Path: "partials/filesets.html", Title: "File sets", Checksum: "1"}, "uniqueword appears here", nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "partials/filesets.html" {
		t.Errorf("search results = %+v, want 1 hit", results)
	}
}

func TestSync(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		_ = os.MkdirAll(filepath.Dir(p), 0o755)
		_ = os.WriteFile(p, []byte(content), 0o644)
	}
	write("partials/index.html", `<h1>Home</h1><a href="#!/faq">faq</a>`)
	write("partials/faq.html", `<h1>FAQ</h1>`)
	write("index.html", `<html>shell, not indexed</html>`)

	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	_ = db.UpsertTemplate(TemplateRow{Path: "partials/gone.html", Checksum: "old"}, "", nil)

	if err := Sync(db, store, "partials", quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	all, _ := db.AllChecksums()
	if len(all) != 2 {
		t.Fatalf("indexed = %v, want 2 templates", all)
	}
	if _, ok := all["partials/gone.html"]; ok {
		t.Error("stale template should be removed")
	}
	if bl, _ := db.Backlinks("/faq"); len(bl) != 1 || bl[0] != "partials/index.html" {
		t.Errorf("backlinks = %v", bl)
	}
}
