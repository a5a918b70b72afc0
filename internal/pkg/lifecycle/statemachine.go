package lifecycle

import (
	"strings"
	"time"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
)

// Action is an administrator decision on a report.
type Action string

const (
	ActionVerify  Action = "verify"
	ActionReject  Action = "reject"
	ActionResolve Action = "resolve"
)

// transitions is the complete set of legal report moves. Anything missing
// from this table is illegal.
var transitions = map[string]map[Action]string{
	models.ReportStatusPending: {
		ActionVerify:  models.ReportStatusVerified,
		ActionReject:  models.ReportStatusRejected,
		ActionResolve: models.ReportStatusResolved,
	},
	models.ReportStatusVerified: {
		ActionResolve: models.ReportStatusResolved,
	},
}

var illegalRules = map[Action]string{
	ActionVerify:  "only pending reports may be verified",
	ActionReject:  "only pending reports may be rejected",
	ActionResolve: "only pending or verified reports may be resolved",
}

// Next returns the status reached by applying action to a report in status from.
func Next(reportID uint, from string, action Action) (string, error) {
	if to, ok := transitions[from][action]; ok {
		return to, nil
	}
	rule, ok := illegalRules[action]
	if !ok {
		rule = "unknown action"
	}
	return "", &apperrors.IllegalTransitionError{
		Entity: "report",
		ID:     reportID,
		From:   from,
		Action: string(action),
		Rule:   rule,
	}
}

// Decision carries the administrator input for a transition.
type Decision struct {
	Comment string
	Points  int
}

// Apply checks the guards of action and mutates the report in place. On error
// the report is left untouched.
func Apply(report *models.Report, action Action, d Decision, now time.Time) error {
	to, err := Next(report.ID, report.Status, action)
	if err != nil {
		return err
	}
	comment := strings.TrimSpace(d.Comment)
	if action == ActionReject && comment == "" {
		return &apperrors.IllegalTransitionError{
			Entity: "report",
			ID:     report.ID,
			From:   report.Status,
			Action: string(action),
			Rule:   "reject requires a non-empty comment",
		}
	}

	at := now
	switch action {
	case ActionVerify:
		report.VerifiedAt = &at
		report.PointsAwarded = d.Points
	case ActionResolve:
		if report.VerifiedAt == nil {
			report.VerifiedAt = &at
		}
		report.ResolvedAt = &at
	}
	if comment != "" {
		report.AdminComment = comment
	}
	report.Status = to
	return nil
}

// IsEditable reports whether the owner may still edit or delete the report.
func IsEditable(report *models.Report) bool {
	return report.Status == models.ReportStatusPending
}
