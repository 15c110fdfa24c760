package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"covid-dashboard/models"
	"covid-dashboard/storage"
	"covid-dashboard/utils"
)

var (
	// ErrNoDataset is returned when a region is selected before any data is loaded.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrUnknownRegion is returned for a selection that is not in the region set.
	ErrUnknownRegion = errors.New("unknown region")
)

// State is the dashboard lifecycle stage.
type State int

const (
	StateUninitialized State = iota
	StateIdle
)

func (s State) String() string {
	if s == StateIdle {
		return "idle"
	}
	return "uninitialized"
}

// Renderer draws a figure at a mount point, replacing what was there.
type Renderer interface {
	Render(mount string, fig models.Figure) error
}

// Event is something the dashboard reacts to.
type Event interface {
	event()
}

// FileUploaded carries the raw bytes of an uploaded CSV file.
type FileUploaded struct {
	Name string
	Data []byte
}

// RegionSelected changes the region filter. An empty Region means all regions.
type RegionSelected struct {
	Region string
}

func (FileUploaded) event()   {}
func (RegionSelected) event() {}

// Dashboard owns the resident dataset and the region selection. Events are
// applied one at a time; every accepted event ends in a full render pass.
type Dashboard struct {
	store         *storage.RecordStore
	parser        *CSVParser
	renderer      Renderer
	logger        *utils.Logger
	renderWorkers int

	mu        sync.Mutex
	state     State
	regionSet *utils.OrderedSet
	regions   []string
	selection string
	view      models.DashboardView
}

// NewDashboard wires the dashboard. renderWorkers bounds how many charts are
// drawn at once.
func NewDashboard(store *storage.RecordStore, parser *CSVParser, renderer Renderer, logger *utils.Logger, renderWorkers int) *Dashboard {
	d := &Dashboard{
		store:         store,
		parser:        parser,
		renderer:      renderer,
		logger:        logger,
		renderWorkers: renderWorkers,
		regionSet:     utils.NewOrderedSet(),
	}
	d.view = withMeta(BuildView(nil, nil, ""), StateUninitialized, store.LastUpdated(), store.UploadID())
	return d
}

// Start restores the cached dataset, if any. It reports whether one was found.
func (d *Dashboard) Start(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	dataset, ok := d.store.Load(ctx)
	if !ok {
		d.logger.Info("[dashboard] No cached data, waiting for an upload")
		return false
	}
	d.initialize(dataset)
	return true
}

// Dispatch applies one event. A rejected event leaves the dashboard unchanged.
func (d *Dashboard) Dispatch(ctx context.Context, ev Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev := ev.(type) {
	case FileUploaded:
		return d.onFileUploaded(ctx, ev)
	case RegionSelected:
		return d.onRegionSelected(ev)
	default:
		return fmt.Errorf("dashboard: unhandled event %T", ev)
	}
}

func (d *Dashboard) onFileUploaded(ctx context.Context, ev FileUploaded) error {
	dataset, err := d.parser.Parse(bytes.NewReader(ev.Data))
	if err != nil {
		d.logger.Error("[dashboard] Upload %q rejected: %v", ev.Name, err)
		return fmt.Errorf("dashboard: upload %q: %w", ev.Name, err)
	}

	d.store.Replace(ctx, dataset)
	d.logger.Info("[dashboard] Loaded %d records from %q", len(dataset), ev.Name)
	d.initialize(dataset)
	return nil
}

func (d *Dashboard) onRegionSelected(ev RegionSelected) error {
	if d.state == StateUninitialized {
		return ErrNoDataset
	}
	if ev.Region != "" && !d.regionSet.Contains(ev.Region) {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, ev.Region)
	}

	d.selection = ev.Region
	d.logger.Debug("[dashboard] Region filter set to %q", ev.Region)
	d.renderPass()
	return nil
}

// initialize installs a new dataset: regions are recomputed from all records
// and the selection goes back to all regions.
func (d *Dashboard) initialize(dataset models.Dataset) {
	d.state = StateIdle
	d.regionSet = RegionSet(dataset)
	d.regions = d.regionSet.Values()
	d.selection = ""
	d.logger.Debug("[dashboard] %d records across %d regions", len(dataset), d.regionSet.Size())
	d.renderPass()
}

func (d *Dashboard) renderPass() {
	dataset := d.store.Current()
	view := BuildView(dataset, d.regions, d.selection)
	d.view = withMeta(view, d.state, d.store.LastUpdated(), d.store.UploadID())

	if d.renderer == nil {
		return
	}
	pool := utils.NewWorkerPool(d.renderWorkers)
	for mount, fig := range Figures(view) {
		mount, fig := mount, fig
		pool.Submit(func() {
			if err := d.renderer.Render(mount, fig); err != nil {
				d.logger.Warn("[dashboard] Chart %s not drawn: %v", mount, err)
			}
		})
	}
	pool.Wait()
}

// View returns the result of the latest render pass.
func (d *Dashboard) View() models.DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// State returns the lifecycle stage.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Filtered returns the records matching the current selection.
func (d *Dashboard) Filtered() models.Dataset {
	d.mu.Lock()
	defer d.mu.Unlock()
	return FilterByRegion(d.store.Current(), d.selection)
}

// Export hands the filtered records to w.
func (d *Dashboard) Export(w storage.DatasetWriter) error {
	return w.Write(d.Filtered())
}
