package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"covid-dashboard/models"
	"covid-dashboard/storage"
)

type recordingRenderer struct {
	mu      sync.Mutex
	figures map[string]models.Figure
	calls   int
	fail    error
}

func (r *recordingRenderer) Render(mount string, fig models.Figure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.figures == nil {
		r.figures = make(map[string]models.Figure)
	}
	r.calls++
	r.figures[mount] = fig
	return r.fail
}

const nyCSV = "State,Date,Confirmed,Active,Recovered,Deaths,Gender,Age\n" +
	"NY,2020-04-01,10,8,1,1,F,25\n" +
	"CA,2020-04-01,4,4,0,0,M,80\n" +
	"NY,2020-04-02,15,11,2,2,M,65\n"

func newTestDashboard(kv storage.KV) (*Dashboard, *recordingRenderer) {
	logger := newTestLogger()
	rr := &recordingRenderer{}
	store := storage.NewRecordStore(kv, logger)
	return NewDashboard(store, NewCSVParser(logger), rr, logger, 2), rr
}

func TestDashboardStartsUninitialized(t *testing.T) {
	d, rr := newTestDashboard(storage.NewMemoryKV())
	if d.Start(context.Background()) {
		t.Fatal("Start should report no cache")
	}
	if d.State() != StateUninitialized {
		t.Errorf("state: got %v", d.State())
	}
	v := d.View()
	if v.State != "uninitialized" || v.Stats.Confirmed != "0" {
		t.Errorf("initial view: %+v", v)
	}
	if rr.calls != 0 {
		t.Errorf("nothing should be rendered before data arrives, got %d calls", rr.calls)
	}

	err := d.Dispatch(context.Background(), RegionSelected{Region: "NY"})
	if !errors.Is(err, ErrNoDataset) {
		t.Errorf("expected ErrNoDataset, got %v", err)
	}
}

func TestDashboardUploadAndSelect(t *testing.T) {
	ctx := context.Background()
	d, rr := newTestDashboard(storage.NewMemoryKV())

	if err := d.Dispatch(ctx, FileUploaded{Name: "cases.csv", Data: []byte(nyCSV)}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	v := d.View()
	if v.State != "idle" || v.TotalRecords != 3 || v.FilteredCount != 3 {
		t.Errorf("after upload: %+v", v)
	}
	if strings.Join(v.Regions, ",") != "NY,CA" {
		t.Errorf("regions: got %v", v.Regions)
	}
	if v.Stats.Confirmed != "15" || v.UploadID == "" || v.LastUpdated.IsZero() {
		t.Errorf("stats/meta: %+v", v)
	}
	if len(rr.figures) != 3 {
		t.Errorf("expected three charts drawn, got %d", len(rr.figures))
	}

	if err := d.Dispatch(ctx, RegionSelected{Region: "CA"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	v = d.View()
	if v.Selection != "CA" || v.FilteredCount != 1 || v.Stats.Confirmed != "4" {
		t.Errorf("after selecting CA: %+v", v)
	}
	if got := rr.figures[models.MountAge].Values; got[4] != 1 {
		t.Errorf("age chart for CA: got %v", got)
	}
	if strings.Join(v.Regions, ",") != "NY,CA" {
		t.Errorf("regions must come from the full dataset, got %v", v.Regions)
	}

	if err := d.Dispatch(ctx, RegionSelected{Region: ""}); err != nil {
		t.Fatalf("clear selection: %v", err)
	}
	if v := d.View(); v.FilteredCount != 3 {
		t.Errorf("cleared selection: filtered %d, want 3", v.FilteredCount)
	}
}

func TestDashboardRejectsUnknownRegion(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(storage.NewMemoryKV())
	_ = d.Dispatch(ctx, FileUploaded{Name: "cases.csv", Data: []byte(nyCSV)})
	_ = d.Dispatch(ctx, RegionSelected{Region: "NY"})

	err := d.Dispatch(ctx, RegionSelected{Region: "ny"})
	if !errors.Is(err, ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}
	if v := d.View(); v.Selection != "NY" {
		t.Errorf("selection should be unchanged, got %q", v.Selection)
	}
}

func TestDashboardFailedUploadKeepsState(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(storage.NewMemoryKV())
	_ = d.Dispatch(ctx, FileUploaded{Name: "cases.csv", Data: []byte(nyCSV)})
	_ = d.Dispatch(ctx, RegionSelected{Region: "NY"})
	before := d.View()

	err := d.Dispatch(ctx, FileUploaded{Name: "broken.csv", Data: []byte("State\n\"NY\n")})
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	after := d.View()
	if after.UploadID != before.UploadID || after.Selection != "NY" || after.TotalRecords != 3 {
		t.Errorf("state changed after failed upload: before %+v after %+v", before, after)
	}
}

func TestDashboardNewUploadResetsSelection(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(storage.NewMemoryKV())
	_ = d.Dispatch(ctx, FileUploaded{Name: "a.csv", Data: []byte(nyCSV)})
	_ = d.Dispatch(ctx, RegionSelected{Region: "NY"})

	if err := d.Dispatch(ctx, FileUploaded{Name: "b.csv", Data: []byte("State,Confirmed\nTX,3\n")}); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	v := d.View()
	if v.Selection != "" || strings.Join(v.Regions, ",") != "TX" || v.Stats.Confirmed != "3" {
		t.Errorf("after replacing dataset: %+v", v)
	}
}

func TestDashboardRestoresFromCache(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	first, _ := newTestDashboard(kv)
	_ = first.Dispatch(ctx, FileUploaded{Name: "cases.csv", Data: []byte(nyCSV)})

	second, rr := newTestDashboard(kv)
	if !second.Start(ctx) {
		t.Fatal("expected cache restore")
	}
	v := second.View()
	if v.State != "idle" || v.TotalRecords != 3 || v.UploadID != first.View().UploadID {
		t.Errorf("restored view: %+v", v)
	}
	if rr.calls != 3 {
		t.Errorf("restore should render once, got %d chart calls", rr.calls)
	}
}

func TestDashboardRendererFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	d, rr := newTestDashboard(storage.NewMemoryKV())
	rr.fail = errors.New("canvas gone")

	if err := d.Dispatch(ctx, FileUploaded{Name: "cases.csv", Data: []byte(nyCSV)}); err != nil {
		t.Fatalf("renderer errors should not fail the event: %v", err)
	}
	if d.View().TotalRecords != 3 {
		t.Error("view should still be updated")
	}
}

func TestDashboardExportFiltered(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(storage.NewMemoryKV())
	_ = d.Dispatch(ctx, FileUploaded{Name: "cases.csv", Data: []byte(nyCSV)})
	_ = d.Dispatch(ctx, RegionSelected{Region: "CA"})

	var buf bytes.Buffer
	if err := d.Export(storage.NewCSVWriter(&buf)); err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "State,Date,Confirmed,Active,Recovered,Deaths,Gender,Age\nCA,2020-04-01,4,4,0,0,M,80\n"
	if buf.String() != want {
		t.Errorf("export:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPrintSummary(t *testing.T) {
	d := models.Dataset{
		{"State": "NY", "Gender": "F", "Age": "25", "Confirmed": "10"},
		{"State": "NY", "Gender": "M", "Age": "65", "Confirmed": "15"},
	}
	var buf bytes.Buffer
	PrintSummary(&buf, BuildView(d, DeriveRegions(d), "NY"))

	out := buf.String()
	for _, want := range []string{"Region           : \033[1mNY", "Confirmed : \033[1;34m15", "18-30", "70+", "Total        2"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryWithoutClassifiedRecords(t *testing.T) {
	d := models.Dataset{{"State": "NY", "Confirmed": "3"}}
	var buf bytes.Buffer
	PrintSummary(&buf, BuildView(d, DeriveRegions(d), ""))

	out := buf.String()
	for _, want := range []string{"No gender data", "No age data", "All States"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Female", "Female"},
		{"Não informado", "Não infor..."},
		{"Женщина", "Женщина"},
		{"Неизвестный пол", "Неизвестн..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, 12)
		if got != tt.want {
			t.Errorf("truncate(%q) = %q; want %q", tt.in, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q) produced invalid UTF-8 %q", tt.in, got)
		}
	}
}
