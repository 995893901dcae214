package configstore

import (
	"fmt"

	"github.com/temirov/gitcheck/internal/repos/shared"
)

const (
	configurationsHeadingConstant     = "Configurations:"
	noConfigurationsMessageConstant   = "There are no saved configurations."
	configurationNameTemplateConstant = "    %s"
	kindHeadingTemplateConstant       = "        %s:"
	kindDirectoryTemplateConstant     = "            %s"
	purgedDirectoryTemplateConstant   = "Purging: %s > %s > %s"
	purgeDeletedHeadingConstant       = "The following configurations do not hold valid directories anymore and will be deleted:"
	purgeNothingMessageConstant       = "Nothing to purge"
	purgeCompleteMessageConstant      = "-- Purge complete --"
	blankLineConstant                 = ""
)

var kindLabels = map[DirectoryKind]string{
	KindRepositories: "Repositories",
	KindSearch:       "Search directories",
	KindIgnore:       "Ignore directories",
}

// Presenter renders store listings and purge results as report lines.
type Presenter struct {
	reporter shared.Reporter
}

// NewPresenter constructs a Presenter. A nil reporter writes to standard output.
func NewPresenter(reporter shared.Reporter) *Presenter {
	if reporter == nil {
		reporter = shared.NewWriterReporter(nil)
	}
	return &Presenter{reporter: reporter}
}

// ListNames prints the configuration names, or a notice when there are none.
func (presenter *Presenter) ListNames(names []string) {
	presenter.reporter.Report(shared.SeverityInfo, blankLineConstant)
	if len(names) == 0 {
		presenter.reporter.Report(shared.SeverityInfo, noConfigurationsMessageConstant)
		return
	}
	presenter.reporter.Report(shared.SeverityInfo, configurationsHeadingConstant)
	for _, name := range names {
		presenter.reporter.Report(shared.SeverityInfo, fmt.Sprintf(configurationNameTemplateConstant, name))
	}
}

// ListEntries prints each named configuration with its directories. Names must be present in entries.
func (presenter *Presenter) ListEntries(entries map[string]Entry, names []string) {
	presenter.reporter.Report(shared.SeverityInfo, blankLineConstant)
	if len(names) == 0 {
		presenter.reporter.Report(shared.SeverityInfo, noConfigurationsMessageConstant)
		return
	}
	presenter.reporter.Report(shared.SeverityInfo, configurationsHeadingConstant)
	for _, name := range names {
		presenter.reporter.Report(shared.SeverityInfo, blankLineConstant)
		presenter.reporter.Report(shared.SeverityInfo, fmt.Sprintf(configurationNameTemplateConstant, name))
		entry := entries[name]
		for _, kind := range Kinds() {
			directories := entry.Directories(kind)
			if len(directories) == 0 {
				continue
			}
			presenter.reporter.Report(shared.SeverityInfo, blankLineConstant)
			presenter.reporter.Report(shared.SeverityInfo, fmt.Sprintf(kindHeadingTemplateConstant, kindLabels[kind]))
			for _, directory := range directories {
				presenter.reporter.Report(shared.SeverityInfo, fmt.Sprintf(kindDirectoryTemplateConstant, directory))
			}
		}
	}
}

// Purge prints what a purge removed.
func (presenter *Presenter) Purge(report PurgeReport) {
	for _, purged := range report.PurgedDirectories {
		presenter.reporter.Report(shared.SeverityInfo, fmt.Sprintf(purgedDirectoryTemplateConstant, purged.Configuration, purged.Kind, purged.Directory))
	}
	if len(report.DeletedConfigurations) > 0 {
		presenter.reporter.Report(shared.SeverityInfo, blankLineConstant)
		presenter.reporter.Report(shared.SeverityWarning, purgeDeletedHeadingConstant)
		for _, name := range report.DeletedConfigurations {
			presenter.reporter.Report(shared.SeverityWarning, fmt.Sprintf(configurationNameTemplateConstant, name))
		}
	}
	if !report.Changed() {
		presenter.reporter.Report(shared.SeverityInfo, purgeNothingMessageConstant)
		return
	}
	presenter.reporter.Report(shared.SeverityInfo, blankLineConstant)
	presenter.reporter.Report(shared.SeveritySuccess, purgeCompleteMessageConstant)
}
