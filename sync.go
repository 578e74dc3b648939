package flowbuilder

import (
	"context"
	"sort"
	"time"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/render"
)

// ReportView records the node ids the client currently displays.
// The next CheckSync compares them with the model instead of the last rendered scene.
func (e *Editor) ReportView(nodeIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reported = append([]string{}, nodeIDs...)
}

// CheckSync compares the displayed node views with the model.
// On mismatch it emits a dom_desync_warning notice and forces a full re-render.
// It reports whether the view was in sync.
func (e *Editor) CheckSync() bool {
	e.mu.Lock()
	displayed := e.reported
	if displayed == nil {
		displayed = sceneIDs(e.scene)
	}
	if sameIDs(displayed, e.model.Nodes()) {
		e.mu.Unlock()
		return true
	}
	scene := e.commitLocked(false)
	e.mu.Unlock()

	e.logger.Warn("view out of sync with model, re-rendered", "displayed", len(displayed), "nodes", len(scene.Nodes))
	e.metrics.DesyncRecovered()
	e.notify(domain.NewNotice(domain.NoticeDesyncWarning, domain.LevelWarning,
		"The canvas was out of date and has been redrawn."))
	e.publish(scene)
	return false
}

// FocusRegained triggers an immediate consistency check in Run.
func (e *Editor) FocusRegained() {
	select {
	case e.focus <- struct{}{}:
	default: // A check is already queued
	}
}

// Run performs the periodic consistency check until ctx is cancelled.
// Pending writes are flushed on exit.
func (e *Editor) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return e.Flush(context.WithoutCancel(ctx))
		case <-ticker.C:
			e.CheckSync()
		case <-e.focus:
			e.CheckSync()
		}
	}
}

func sceneIDs(scene render.Scene) []string {
	ids := make([]string, len(scene.Nodes))
	for i, n := range scene.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func sameIDs(displayed []string, nodes []domain.Node) bool {
	if len(displayed) != len(nodes) {
		return false
	}
	want := make([]string, len(nodes))
	for i, n := range nodes {
		want[i] = n.ID
	}
	got := append([]string(nil), displayed...)
	sort.Strings(got)
	sort.Strings(want)
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
