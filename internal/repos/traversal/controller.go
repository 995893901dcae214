package traversal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitcheck/internal/repos/dependencies"
	"github.com/temirov/gitcheck/internal/repos/shared"
	pathutils "github.com/temirov/gitcheck/internal/utils/path"
)

const (
	headerTemplateConstant                 = "-- Checking directory: %s --"
	headerRuleCharacterConstant            = "-"
	directoryFailureReportTemplateConstant = "-- ERROR: %v"
	searchFailureReportTemplateConstant    = "-- ERROR: Could not search directory %s: %v"
	skippedIgnoredLogMessageConstant       = "skipping ignored directory"
	skippedVisitedLogMessageConstant       = "skipping visited directory"
	skippedRootLogMessageConstant          = "skipping search root"
	descendingLogMessageConstant           = "descending into directory"
	directoryFailedLogMessageConstant      = "directory could not be checked"
	searchFailedLogMessageConstant         = "search root could not be enumerated"
	runCompletedLogMessageConstant         = "traversal completed"
	directoryFieldNameConstant             = "directory"
	levelFieldNameConstant                 = "level"
	probedFieldNameConstant                = "probed"
	repositoriesFieldNameConstant          = "repositories"
	unavailableFieldNameConstant           = "unavailable"
	proberMissingMessageConstant           = "traversal: prober not configured"
	reconcilerMissingMessageConstant       = "traversal: reconciler not configured"
	reporterMissingMessageConstant         = "traversal: reporter not configured"
	emptyHeaderLeadingLineConstant         = ""
	rootSearchLevelConstant                = 0
	nextSearchLevelIncrementConstant       = 1
)

// ErrProberNotConfigured indicates the prober dependency was missing.
var ErrProberNotConfigured = errors.New(proberMissingMessageConstant)

// ErrReconcilerNotConfigured indicates the reconciler dependency was missing.
var ErrReconcilerNotConfigured = errors.New(reconcilerMissingMessageConstant)

// ErrReporterNotConfigured indicates the reporter dependency was missing.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// IdentityResolver maps a directory to the key used for deduplication and ignore checks.
type IdentityResolver func(directory shared.Directory) shared.Directory

// Dependencies enumerates the collaborators of a Controller.
type Dependencies struct {
	Prober             shared.BranchProber
	Reconciler         shared.BranchReconciler
	SubdirectoryLister shared.SubdirectoryLister
	FileSystem         shared.FileSystem
	Reporter           shared.Reporter
	Logger             *zap.Logger
	IdentityResolver   IdentityResolver
}

// Plan describes one traversal.
type Plan struct {
	DirectDirectories []shared.Directory
	SearchRoots       []shared.Directory
	Ignore            []shared.Directory
	Request           shared.OperationRequest
	Recursive         bool
	MaxDepth          shared.RecursionBudget
}

// Summary counts what a traversal did.
type Summary struct {
	Probed       int
	Repositories int
	Unavailable  int
}

// Controller applies probing and reconciliation across direct directories and search roots.
type Controller struct {
	prober           shared.BranchProber
	reconciler       shared.BranchReconciler
	lister           shared.SubdirectoryLister
	reporter         shared.Reporter
	logger           *zap.Logger
	identityResolver IdentityResolver
}

// NewController validates dependencies and constructs a Controller.
func NewController(dependencySet Dependencies) (*Controller, error) {
	if dependencySet.Prober == nil {
		return nil, ErrProberNotConfigured
	}
	if dependencySet.Reconciler == nil {
		return nil, ErrReconcilerNotConfigured
	}
	if dependencySet.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	identityResolver := dependencySet.IdentityResolver
	if identityResolver == nil {
		identityResolver = canonicalIdentity
	}
	fileSystem := dependencies.ResolveFileSystem(dependencySet.FileSystem)
	return &Controller{
		prober:           dependencySet.Prober,
		reconciler:       dependencySet.Reconciler,
		lister:           dependencies.ResolveSubdirectoryLister(dependencySet.SubdirectoryLister, fileSystem),
		reporter:         dependencySet.Reporter,
		logger:           dependencies.ResolveLogger(dependencySet.Logger),
		identityResolver: identityResolver,
	}, nil
}

// traversalRun carries the state shared by every level of one Run.
type traversalRun struct {
	plan    Plan
	ignored shared.DirectorySet
	visited *VisitedSet
	summary Summary
}

// Run checks every direct directory, then searches every root. No directory is probed
// twice and ignored directories are neither probed nor searched. The only error is the
// cancellation of the context, observed before each directory.
func (controller *Controller) Run(executionContext context.Context, plan Plan) (Summary, error) {
	run := &traversalRun{plan: plan, ignored: shared.NewDirectorySet(), visited: NewVisitedSet()}
	for _, ignoredDirectory := range plan.Ignore {
		run.ignored.Add(controller.identityResolver(ignoredDirectory))
	}

	for _, directory := range plan.DirectDirectories {
		if contextError := executionContext.Err(); contextError != nil {
			return run.summary, contextError
		}
		identity := controller.identityResolver(directory)
		if controller.skip(run, directory, identity) {
			continue
		}
		if _, visitError := controller.visit(executionContext, run, directory, identity); visitError != nil {
			return run.summary, visitError
		}
	}

	for _, searchRoot := range plan.SearchRoots {
		if searchError := controller.search(executionContext, run, searchRoot, rootSearchLevelConstant); searchError != nil {
			return run.summary, searchError
		}
	}

	controller.logger.Debug(
		runCompletedLogMessageConstant,
		zap.Int(probedFieldNameConstant, run.summary.Probed),
		zap.Int(repositoriesFieldNameConstant, run.summary.Repositories),
		zap.Int(unavailableFieldNameConstant, run.summary.Unavailable),
	)
	return run.summary, nil
}

func (controller *Controller) search(executionContext context.Context, run *traversalRun, root shared.Directory, level int) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	rootIdentity := controller.identityResolver(root)
	if run.ignored.Contains(rootIdentity) {
		controller.logger.Debug(skippedIgnoredLogMessageConstant, zap.String(directoryFieldNameConstant, root.String()))
		return nil
	}
	if verdict, probed := run.visited.Verdict(rootIdentity); probed && verdict != VerdictNotRepository {
		controller.logger.Debug(skippedRootLogMessageConstant, zap.String(directoryFieldNameConstant, root.String()))
		return nil
	}
	if !run.visited.MarkSearched(rootIdentity) {
		controller.logger.Debug(skippedRootLogMessageConstant, zap.String(directoryFieldNameConstant, root.String()))
		return nil
	}

	subdirectories, listError := controller.lister.ListSubdirectories(root)
	if listError != nil {
		controller.logger.Warn(searchFailedLogMessageConstant, zap.String(directoryFieldNameConstant, root.String()), zap.Error(listError))
		shared.ReportIndented(controller.reporter, shared.SeverityError, fmt.Sprintf(searchFailureReportTemplateConstant, root, listError))
		return nil
	}

	for _, subdirectory := range subdirectories {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		identity := controller.identityResolver(subdirectory)
		if run.ignored.Contains(identity) {
			controller.logger.Debug(skippedIgnoredLogMessageConstant, zap.String(directoryFieldNameConstant, subdirectory.String()))
			continue
		}

		verdict, probed := run.visited.Verdict(identity)
		if !probed {
			var visitError error
			verdict, visitError = controller.visit(executionContext, run, subdirectory, identity)
			if visitError != nil {
				return visitError
			}
		}

		if !run.plan.Recursive || verdict != VerdictNotRepository || !run.plan.MaxDepth.Allows(level) {
			continue
		}
		controller.logger.Debug(descendingLogMessageConstant, zap.String(directoryFieldNameConstant, subdirectory.String()), zap.Int(levelFieldNameConstant, level+nextSearchLevelIncrementConstant))
		if searchError := controller.search(executionContext, run, subdirectory, level+nextSearchLevelIncrementConstant); searchError != nil {
			return searchError
		}
	}
	return nil
}

func (controller *Controller) skip(run *traversalRun, directory shared.Directory, identity shared.Directory) bool {
	if run.ignored.Contains(identity) {
		controller.logger.Debug(skippedIgnoredLogMessageConstant, zap.String(directoryFieldNameConstant, directory.String()))
		return true
	}
	if _, probed := run.visited.Verdict(identity); probed {
		controller.logger.Debug(skippedVisitedLogMessageConstant, zap.String(directoryFieldNameConstant, directory.String()))
		return true
	}
	return false
}

// visit probes and reconciles one directory and records its verdict. Failures local to
// the directory are reported and recorded as unavailable.
func (controller *Controller) visit(executionContext context.Context, run *traversalRun, directory shared.Directory, identity shared.Directory) (Verdict, error) {
	controller.reportHeader(directory)
	run.summary.Probed++

	state, probeError := controller.prober.Probe(executionContext, directory, run.plan.Request)
	if probeError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return VerdictUnavailable, contextError
		}
		controller.logger.Warn(directoryFailedLogMessageConstant, zap.String(directoryFieldNameConstant, directory.String()), zap.Error(probeError))
		shared.ReportIndented(controller.reporter, shared.SeverityError, fmt.Sprintf(directoryFailureReportTemplateConstant, probeError))
		run.visited.Record(identity, VerdictUnavailable)
		run.summary.Unavailable++
		return VerdictUnavailable, nil
	}

	outcome, reconcileError := controller.reconciler.Reconcile(executionContext, directory, state, run.plan.Request)
	verdict := VerdictNotRepository
	if outcome.IsRepository {
		verdict = VerdictRepository
		run.summary.Repositories++
	}
	run.visited.Record(identity, verdict)
	return verdict, reconcileError
}

func (controller *Controller) reportHeader(directory shared.Directory) {
	headerMessage := fmt.Sprintf(headerTemplateConstant, directory)
	headerRule := strings.Repeat(headerRuleCharacterConstant, len(headerMessage))
	controller.reporter.Report(shared.SeverityInfo, emptyHeaderLeadingLineConstant)
	controller.reporter.Report(shared.SeverityHeading, headerRule)
	controller.reporter.Report(shared.SeverityHeading, headerMessage)
	controller.reporter.Report(shared.SeverityHeading, headerRule)
}

func canonicalIdentity(directory shared.Directory) shared.Directory {
	return shared.Directory(pathutils.CanonicalIdentity(directory.String()))
}
