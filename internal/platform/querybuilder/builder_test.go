package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder_ToSQL(t *testing.T) {
	t.Parallel()

	query, args, err := Select("public_id", "title").
		From("quinielas").
		Where(
			Eq("status", "open"),
			IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL error: %v", err)
	}

	want := "SELECT public_id, title FROM quinielas WHERE status = $1 AND deleted_at IS NULL ORDER BY created_at DESC, id LIMIT 10"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"open"}) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestSelectBuilder_EmptyInIsAlwaysFalse(t *testing.T) {
	t.Parallel()

	query, args, err := Select("*").
		From("predictions").
		Where(In("quiniela_public_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL error: %v", err)
	}

	if query != "SELECT * FROM predictions WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestUpdateBuilder_ToSQL(t *testing.T) {
	t.Parallel()

	query, args, err := Update("payments").
		Set("status", "paid").
		SetExpr("paid_at", "NOW()").
		Where(Eq("public_id", "pay-1"), Eq("status", "pending")).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL error: %v", err)
	}

	want := "UPDATE payments SET status = $1, paid_at = NOW() WHERE public_id = $2 AND status = $3"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"paid", "pay-1", "pending"}) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertModel(t *testing.T) {
	t.Parallel()

	type row struct {
		PublicID string `db:"public_id"`
		Points   int    `db:"points"`
		ignored  string
		NoTag    string
	}

	query, args, err := InsertModel("predictions", row{PublicID: "p-1", Points: 5}, "ON CONFLICT DO NOTHING")
	if err != nil {
		t.Fatalf("InsertModel error: %v", err)
	}

	want := "INSERT INTO predictions (public_id, points) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"p-1", 5}) {
		t.Fatalf("unexpected args: %v", args)
	}
}
