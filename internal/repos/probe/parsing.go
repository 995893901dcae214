package probe

import (
	"strings"
	"unicode"

	"github.com/temirov/gitcheck/internal/repos/shared"
)

const (
	notRepositoryMarkerConstant            = "not a git repository"
	fatalMarkerConstant                    = "fatal"
	upToDateMarkerConstant                 = "[up to date]"
	nothingToCommitMarkerConstant          = "nothing to commit"
	branchBehindMarkerConstant             = "Your branch is behind"
	branchAheadMarkerConstant              = "Your branch is ahead"
	branchesDivergedMarkerConstant         = "have diverged"
	currentBranchPrefixConstant            = "* "
	upstreamOpeningBracketConstant         = "["
	upstreamClosingBracketConstant         = "]"
	upstreamTrackingSeparatorConstant      = ":"
	upstreamGoneMarkerConstant             = "gone"
	fetchOutputLineSeparatorConstant       = "\n"
	fetchOutputCarriageReturnConstant      = "\r"
	branchListingLeadingFieldCountConstant = 2
)

var unreachableRemoteMarkers = []string{
	"Could not read from remote repository",
	"unable to access",
	"Could not resolve host",
}

// FetchOutcome classifies the result of fetching all remotes.
type FetchOutcome int

// FetchOutcome values. Exactly one applies to a fetch.
const (
	FetchSucceeded FetchOutcome = iota
	FetchNoRemote
	FetchUnreachable
	FetchUnknownError
)

// FetchClassification is the parsed form of fetch output.
type FetchClassification struct {
	Outcome           FetchOutcome
	UpdatedReferences []string
}

// Failed reports whether the fetch must suppress push and pull.
func (classification FetchClassification) Failed() bool {
	return classification.Outcome == FetchUnreachable || classification.Outcome == FetchUnknownError
}

// IsRepositoryOutput reports whether repository check output lacks the not-a-repository marker.
func IsRepositoryOutput(output string) bool {
	return !strings.Contains(output, notRepositoryMarkerConstant)
}

// ClassifyFetch parses the combined output of a verbose fetch.
// Header lines start in the first column; per-reference lines are indented.
func ClassifyFetch(output string, exitCode int) FetchClassification {
	if len(strings.TrimSpace(output)) == 0 && exitCode == 0 {
		return FetchClassification{Outcome: FetchNoRemote}
	}
	for _, marker := range unreachableRemoteMarkers {
		if strings.Contains(output, marker) {
			return FetchClassification{Outcome: FetchUnreachable}
		}
	}
	if exitCode != 0 || strings.Contains(output, fatalMarkerConstant) {
		return FetchClassification{Outcome: FetchUnknownError}
	}

	updatedReferences := make([]string, 0)
	for _, rawLine := range strings.Split(output, fetchOutputLineSeparatorConstant) {
		line := strings.TrimRight(rawLine, fetchOutputCarriageReturnConstant)
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if !unicode.IsSpace(rune(line[0])) {
			continue
		}
		if strings.Contains(line, upToDateMarkerConstant) {
			continue
		}
		updatedReferences = append(updatedReferences, strings.TrimSpace(line))
	}
	return FetchClassification{Outcome: FetchSucceeded, UpdatedReferences: updatedReferences}
}

// ParseUpstream extracts the upstream of the current branch from `git branch -vv` output.
// An upstream annotation that names a deleted remote branch counts as absent.
func ParseUpstream(branchListing string) (string, bool) {
	for _, rawLine := range strings.Split(branchListing, fetchOutputLineSeparatorConstant) {
		line := strings.TrimRight(rawLine, fetchOutputCarriageReturnConstant)
		if !strings.HasPrefix(line, currentBranchPrefixConstant) {
			continue
		}
		return parseUpstreamAnnotation(line)
	}
	return "", false
}

func parseUpstreamAnnotation(currentBranchLine string) (string, bool) {
	fields := strings.Fields(strings.TrimPrefix(currentBranchLine, currentBranchPrefixConstant))
	if len(fields) <= branchListingLeadingFieldCountConstant {
		return "", false
	}
	remainder := strings.Join(fields[branchListingLeadingFieldCountConstant:], " ")
	if !strings.HasPrefix(remainder, upstreamOpeningBracketConstant) {
		return "", false
	}
	closingIndex := strings.Index(remainder, upstreamClosingBracketConstant)
	if closingIndex < 0 {
		return "", false
	}
	annotation := remainder[len(upstreamOpeningBracketConstant):closingIndex]
	upstreamName := annotation
	trackingDetails := ""
	if separatorIndex := strings.Index(annotation, upstreamTrackingSeparatorConstant); separatorIndex >= 0 {
		upstreamName = annotation[:separatorIndex]
		trackingDetails = strings.TrimSpace(annotation[separatorIndex+len(upstreamTrackingSeparatorConstant):])
	}
	// Reference names cannot contain spaces, so a bracketed commit subject is not an upstream.
	if len(upstreamName) == 0 || strings.ContainsAny(upstreamName, " \t") {
		return "", false
	}
	if trackingDetails == upstreamGoneMarkerConstant {
		return "", false
	}
	return upstreamName, true
}

// ClassifyStatus parses `git status` output into cleanliness and divergence.
// Behind is checked first, then ahead, then diverged.
func ClassifyStatus(output string) (bool, shared.Divergence) {
	isClean := strings.Contains(output, nothingToCommitMarkerConstant)
	switch {
	case strings.Contains(output, branchBehindMarkerConstant):
		return isClean, shared.DivergenceBehind
	case strings.Contains(output, branchAheadMarkerConstant):
		return isClean, shared.DivergenceAhead
	case strings.Contains(output, branchesDivergedMarkerConstant):
		return isClean, shared.DivergenceDiverged
	default:
		return isClean, shared.DivergenceNone
	}
}
