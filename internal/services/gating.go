package services

import (
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// ComputeModuleViews derives each module's state from the user's progress rows.
// Module 1 is always unlocked; module n unlocks when module n-1 is completed.
// modules must be in ascending number order.
func ComputeModuleViews(modules []*models.Module, progress []*models.UserModuleProgress) []models.ModuleView {
	byModule := make(map[uint]*models.UserModuleProgress, len(progress))
	for _, p := range progress {
		byModule[p.ModuleID] = p
	}

	views := make([]models.ModuleView, 0, len(modules))
	prevCompleted := true
	for _, m := range modules {
		view := models.ModuleView{Module: *m, IsUnlocked: prevCompleted}
		if p, ok := byModule[m.ID]; ok {
			view.ViewedPresentation = p.ViewedPresentation
			view.WatchedVideo = p.WatchedVideo
			view.IsCompleted = p.IsCompleted
			view.CompletedAt = p.CompletedAt
		}

		switch {
		case !view.IsUnlocked:
			view.State = models.ModuleLocked
		case view.IsCompleted:
			view.State = models.ModuleCompleted
		case view.ViewedPresentation || view.WatchedVideo:
			view.State = models.ModuleInProgress
		default:
			view.State = models.ModuleUnlocked
		}

		views = append(views, view)
		prevCompleted = view.IsCompleted
	}
	return views
}

// CountCompleted returns the number of completed modules
func CountCompleted(views []models.ModuleView) int {
	n := 0
	for _, v := range views {
		if v.IsCompleted {
			n++
		}
	}
	return n
}

// ProgressPercentage is floor(completed*100/total), 0 when the course has no modules
func ProgressPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}

// AllModulesCompleted holds vacuously for a course without modules
func AllModulesCompleted(completed, total int) bool {
	return completed >= total
}

// moduleUnlocked finds the module's view and reports whether it is open
func moduleUnlocked(views []models.ModuleView, moduleID uint) (models.ModuleView, bool) {
	for _, v := range views {
		if v.Module.ID == moduleID {
			return v, v.IsUnlocked
		}
	}
	return models.ModuleView{}, false
}

// ReconcilePlan lists the module numbers to create and to delete so that the
// stored numbers become exactly {1..count}
func ReconcilePlan(existing []int, count int) (create []int, remove []int) {
	present := make(map[int]bool, len(existing))
	for _, n := range existing {
		present[n] = true
		if n < 1 || n > count {
			remove = append(remove, n)
		}
	}
	for n := 1; n <= count; n++ {
		if !present[n] {
			create = append(create, n)
		}
	}
	return create, remove
}
