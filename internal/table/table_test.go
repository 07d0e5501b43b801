package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

const ordersCSV = `user_id,country,n_orders,avg_amount,signup,vip,is_high_value
007,US,3,10.5,2024-01-03,true,0
012,CA,NA,9.25,2024-01-01,false,1
003,,8,null,2024-01-02,true,1
`

func readOrders(t *testing.T) *Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(ordersCSV), ReadOptions{StringColumns: []string{"user_id"}})
	if err != nil {
		t.Fatalf("ReadCSV() err=%v", err)
	}
	return tbl
}

func TestReadCSVInfersKinds(t *testing.T) {
	tbl := readOrders(t)
	if tbl.Len() != 3 {
		t.Fatalf("Len()=%d, want 3", tbl.Len())
	}
	want := map[string]Kind{
		"user_id":       KindString,
		"country":       KindString,
		"n_orders":      KindInt,
		"avg_amount":    KindFloat,
		"signup":        KindDatetime,
		"vip":           KindBool,
		"is_high_value": KindInt,
	}
	got := make(map[string]Kind, tbl.Width())
	for _, c := range tbl.Columns() {
		got[c.Name] = c.Kind
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVKeepsIdentifierText(t *testing.T) {
	tbl := readOrders(t)
	ids, _ := tbl.Column("user_id")
	if diff := cmp.Diff([]string{"007", "012", "003"}, ids.Cells()); diff != "" {
		t.Fatalf("user_id mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVMarksMissing(t *testing.T) {
	tbl := readOrders(t)
	orders, _ := tbl.Column("n_orders")
	if !orders.Missing(1) {
		t.Fatalf("n_orders[1] should be missing")
	}
	if _, ok := orders.Float(1); ok {
		t.Fatalf("Float() on missing cell should fail")
	}
	country, _ := tbl.Column("country")
	if country.MissingCount() != 1 {
		t.Fatalf("country MissingCount()=%d, want 1", country.MissingCount())
	}
	vip, _ := tbl.Column("vip")
	if v, ok := vip.Float(0); !ok || v != 1 {
		t.Fatalf("vip Float(0)=%v,%v, want 1,true", v, ok)
	}
}

func TestReadCSVRejectsDuplicateHeader(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,a\n1,2\n"), ReadOptions{}); err == nil {
		t.Fatalf("ReadCSV() expected duplicate column error")
	}
	if _, err := ReadCSV(strings.NewReader(""), ReadOptions{}); err == nil {
		t.Fatalf("ReadCSV() expected error for empty input")
	}
}

func TestSortByDatetimeMissingLast(t *testing.T) {
	tbl, err := New(
		NewColumn("ts", []string{"2024-03-01", "", "2024-01-01T10:00:00Z", "2024-02-01"}),
		NewStringColumn("id", []string{"a", "b", "c", "d"}),
	)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	sorted, err := tbl.SortBy("ts")
	if err != nil {
		t.Fatalf("SortBy() err=%v", err)
	}
	ids, _ := sorted.Column("id")
	if diff := cmp.Diff([]string{"c", "d", "a", "b"}, ids.Cells()); diff != "" {
		t.Fatalf("sorted ids mismatch (-want +got):\n%s", diff)
	}

	if _, err := tbl.SortBy("missing"); !errors.Is(err, ErrNoColumn) {
		t.Fatalf("SortBy() err=%v, want ErrNoColumn", err)
	}
}

func TestDropAndTake(t *testing.T) {
	tbl := readOrders(t)
	features := tbl.Drop("is_high_value", "user_id", "unknown")
	if diff := cmp.Diff([]string{"country", "n_orders", "avg_amount", "signup", "vip"}, features.Names()); diff != "" {
		t.Fatalf("Drop() names mismatch (-want +got):\n%s", diff)
	}
	if !tbl.Has("user_id") {
		t.Fatalf("Drop() mutated the source table")
	}

	sub := tbl.Take([]int{2, 0})
	ids, _ := sub.Column("user_id")
	if diff := cmp.Diff([]string{"003", "007"}, ids.Cells()); diff != "" {
		t.Fatalf("Take() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadParquetFallsBackToSiblingCSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "data/features.csv", []byte(ordersCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tbl, used, err := Load(fs, "data/features.parquet", ReadOptions{})
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if used != "data/features.csv" {
		t.Fatalf("Load() read %q, want data/features.csv", used)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len()=%d, want 3", tbl.Len())
	}

	if _, _, err := Load(fs, "data/other.parquet", ReadOptions{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Load() err=%v, want ErrUnsupportedFormat", err)
	}
	if _, _, err := Load(fs, "data/features.xlsx", ReadOptions{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Load() err=%v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadTSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "f.tsv", []byte("a\tb\n1\tx\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	tbl, _, err := Load(fs, "f.tsv", ReadOptions{})
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, tbl.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveWritesCSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	tbl := readOrders(t).Take([]int{0})
	if err := Save(fs, "out/rows.csv", tbl); err != nil {
		t.Fatalf("Save() err=%v", err)
	}
	raw, err := afero.ReadFile(fs, "out/rows.csv")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var want bytes.Buffer
	want.WriteString("user_id,country,n_orders,avg_amount,signup,vip,is_high_value\n")
	want.WriteString("007,US,3,10.5,2024-01-03,true,0\n")
	if string(raw) != want.String() {
		t.Fatalf("Save() wrote %q, want %q", raw, want.String())
	}
}

func TestReadCSVNamesBlankHeaderCells(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(",user_id,y\n0,u001,1\n1,u002,0\n"), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV() err=%v", err)
	}
	if diff := cmp.Diff([]string{"Unnamed: 0", "user_id", "y"}, tbl.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
