package cleanup

import (
	"context"
	"fmt"
	"io"

	"github.com/AATruttse/fundoubler/internal/config"
	"github.com/AATruttse/fundoubler/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// PromptFormat is the interactive question asked for every candidate
const PromptFormat = "    %s delete (y/n)?"

// Executor applies the keep/delete policy to sorted duplicate groups
type Executor struct {
	settings *config.Settings
	fs       afero.Fs
	decider  Decider
	out      io.Writer
	logger   *zap.Logger
}

// NewExecutor creates a new deletion executor. The decider is only used in
// interactive mode and may be nil otherwise.
func NewExecutor(settings *config.Settings, fs afero.Fs, decider Decider, out io.Writer, logger *zap.Logger) *Executor {
	if out == nil {
		out = io.Discard
	}
	return &Executor{
		settings: settings,
		fs:       fs,
		decider:  decider,
		out:      out,
		logger:   logger,
	}
}

// Execute walks the groups in order and keeps or deletes every member.
// Each removal stands on its own: a failure is logged and the next file
// is handled as usual. Nothing happens unless deletion is enabled.
func (e *Executor) Execute(ctx context.Context, groups []*models.Group) (*models.CleanupSummary, error) {
	summary := &models.CleanupSummary{DryRun: e.settings.DryRun}
	if !e.settings.Delete {
		return summary, nil
	}

	e.logger.Info("Starting cleanup",
		zap.Int("groups", len(groups)),
		zap.Bool("force", e.settings.ForceDelete),
		zap.Bool("dry_run", e.settings.DryRun))

	for _, g := range groups {
		outcome, err := e.executeGroup(ctx, g, summary)
		summary.Groups = append(summary.Groups, outcome)
		if err != nil {
			return summary, err
		}
	}

	e.logger.Info("Cleanup completed",
		zap.Int("deleted", summary.Deleted),
		zap.Int("failed", summary.Failed),
		zap.Int("kept", summary.Kept),
		zap.Int64("freed_bytes", summary.FreedBytes))

	return summary, nil
}

func (e *Executor) executeGroup(ctx context.Context, g *models.Group, summary *models.CleanupSummary) (models.GroupOutcome, error) {
	header := g.Header()
	outcome := models.GroupOutcome{Header: header}

	e.logger.Info("Group", zap.String("header", header), zap.Int("files", len(g.Files)))
	// Interactive prompts are shown even in silent mode, so is their header
	if !e.settings.Silent || !e.settings.ForceDelete {
		fmt.Fprintln(e.out, header)
	}

	last := len(g.Files) - 1
	for i, f := range g.Files {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		if e.shouldDelete(i, last, f) {
			e.remove(f, &outcome, summary)
		} else {
			e.keep(f, &outcome, summary)
		}
	}

	return outcome, nil
}

// shouldDelete decides one member. The first member survives forced mode,
// the last one is never offered in interactive mode.
func (e *Executor) shouldDelete(i, last int, f *models.FileRecord) bool {
	if e.settings.ForceDelete {
		return i > 0
	}
	if i == last {
		return false
	}
	if e.decider == nil {
		e.logger.Warn("No decision provider, keeping file", zap.String("path", f.Path))
		return false
	}

	ok, err := e.decider.Confirm(fmt.Sprintf(PromptFormat, f.Path), true)
	if err != nil {
		e.logger.Warn("Confirmation failed, keeping file", zap.String("path", f.Path), zap.Error(err))
		return false
	}
	return ok
}

func (e *Executor) keep(f *models.FileRecord, outcome *models.GroupOutcome, summary *models.CleanupSummary) {
	e.logger.Info("keep", zap.String("path", f.Path))
	e.announce(f.Path, "keep!")

	outcome.Decisions = append(outcome.Decisions, models.Decision{Path: f.Path, Action: models.ActionKeep})
	summary.Kept++
}

func (e *Executor) remove(f *models.FileRecord, outcome *models.GroupOutcome, summary *models.CleanupSummary) {
	e.logger.Info("delete", zap.String("path", f.Path), zap.Bool("dry_run", e.settings.DryRun))

	if e.settings.DryRun {
		e.announce(f.Path, "delete! (dry run)")
		outcome.Decisions = append(outcome.Decisions, models.Decision{Path: f.Path, Action: models.ActionDryRun})
		return
	}

	if err := e.fs.Remove(f.Path); err != nil {
		e.logger.Warn("Can't delete file", zap.String("path", f.Path), zap.Error(err))
		if !e.settings.Silent {
			fmt.Fprintf(e.out, "Can't delete %s - %v\n", f.Path, err)
		}
		outcome.Decisions = append(outcome.Decisions, models.Decision{
			Path:   f.Path,
			Action: models.ActionFailed,
			Error:  err.Error(),
		})
		summary.Failed++
		return
	}

	e.announce(f.Path, "delete!")
	outcome.Decisions = append(outcome.Decisions, models.Decision{Path: f.Path, Action: models.ActionDelete})
	outcome.Deleted++
	summary.Deleted++
	summary.FreedBytes += f.Bytes
}

// announce prints one decision line unless silent
func (e *Executor) announce(path, verdict string) {
	if e.settings.Silent {
		return
	}
	fmt.Fprintf(e.out, "    %s...   %s\n", path, verdict)
}
