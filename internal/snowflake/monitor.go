package snowflake

import (
	"context"
	"fmt"
	"strings"

	"frostline/pkg/errors"
)

// TriggerAction is what a resource monitor does when a threshold is crossed
type TriggerAction string

const (
	ActionNotify           TriggerAction = "NOTIFY"
	ActionSuspend          TriggerAction = "SUSPEND"
	ActionSuspendImmediate TriggerAction = "SUSPEND_IMMEDIATE"
)

// MonitorTrigger is one TRIGGERS ON ... PERCENT DO ... clause
type MonitorTrigger struct {
	Percent int
	Action  TriggerAction
}

// MonitorSpec describes a CREATE RESOURCE MONITOR statement
type MonitorSpec struct {
	Name           string
	CreditQuota    int
	Frequency      string // MONTHLY, DAILY, WEEKLY, YEARLY, NEVER
	StartTimestamp string // empty means IMMEDIATELY
	EndTimestamp   string
	Triggers       []MonitorTrigger
	OrReplace      bool
}

// MonitorInfo is one row of SHOW RESOURCE MONITORS
type MonitorInfo struct {
	Name             string
	CreditQuota      string
	UsedCredits      string
	RemainingCredits string
	Level            string
	Frequency        string
	StartTime        string
	EndTime          string
	CreatedOn        string
}

var monitorFrequencies = map[string]bool{
	"MONTHLY": true,
	"DAILY":   true,
	"WEEKLY":  true,
	"YEARLY":  true,
	"NEVER":   true,
}

// Validate checks the spec before any SQL is built. The platform allows at
// most one SUSPEND and one SUSPEND_IMMEDIATE trigger per monitor.
func (m MonitorSpec) Validate() error {
	if err := ValidateIdentifier(m.Name); err != nil {
		return err
	}

	if m.CreditQuota <= 0 {
		return errors.ValidationError("credit_quota", m.CreditQuota, "must be a positive number of credits")
	}

	if m.Frequency != "" && !monitorFrequencies[strings.ToUpper(m.Frequency)] {
		return errors.ValidationError("frequency", m.Frequency,
			"must be one of MONTHLY, DAILY, WEEKLY, YEARLY, NEVER")
	}

	suspends, suspendImmediates := 0, 0
	for _, trig := range m.Triggers {
		if trig.Percent <= 0 {
			return errors.ValidationError("trigger", trig.Percent, "threshold percent must be positive")
		}
		switch trig.Action {
		case ActionNotify:
		case ActionSuspend:
			suspends++
		case ActionSuspendImmediate:
			suspendImmediates++
		default:
			return errors.ValidationError("trigger", string(trig.Action),
				"action must be NOTIFY, SUSPEND or SUSPEND_IMMEDIATE")
		}
	}
	if suspends > 1 {
		return errors.ValidationError("triggers", suspends, "at most one SUSPEND trigger is allowed")
	}
	if suspendImmediates > 1 {
		return errors.ValidationError("triggers", suspendImmediates,
			"at most one SUSPEND_IMMEDIATE trigger is allowed")
	}

	return nil
}

// SQL renders the CREATE RESOURCE MONITOR statement
func (m MonitorSpec) SQL() (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if m.OrReplace {
		b.WriteString("OR REPLACE ")
	}
	b.WriteString("RESOURCE MONITOR ")
	b.WriteString(m.Name)
	b.WriteString("\nWITH")
	fmt.Fprintf(&b, "\n    CREDIT_QUOTA = %d", m.CreditQuota)
	if m.Frequency != "" {
		fmt.Fprintf(&b, "\n    FREQUENCY = %s", strings.ToUpper(m.Frequency))
	}
	if m.StartTimestamp != "" {
		fmt.Fprintf(&b, "\n    START_TIMESTAMP = '%s'", escapeStringLiteral(m.StartTimestamp))
	} else {
		b.WriteString("\n    START_TIMESTAMP = IMMEDIATELY")
	}
	if m.EndTimestamp != "" {
		fmt.Fprintf(&b, "\n    END_TIMESTAMP = '%s'", escapeStringLiteral(m.EndTimestamp))
	}

	if len(m.Triggers) > 0 {
		b.WriteString("\n    TRIGGERS")
		for _, trig := range m.Triggers {
			fmt.Fprintf(&b, "\n        ON %d PERCENT DO %s", trig.Percent, trig.Action)
		}
	}

	return b.String(), nil
}

// CreateResourceMonitor issues CREATE RESOURCE MONITOR
func (s *Service) CreateResourceMonitor(ctx context.Context, spec MonitorSpec) error {
	stmt, err := spec.SQL()
	if err != nil {
		return err
	}
	return s.exec(ctx, stmt)
}

// AlterResourceMonitorQuota changes the credit quota of an existing monitor
func (s *Service) AlterResourceMonitorQuota(ctx context.Context, name string, creditQuota int) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	if creditQuota <= 0 {
		return errors.ValidationError("credit_quota", creditQuota, "must be a positive number of credits")
	}
	stmt := fmt.Sprintf("ALTER RESOURCE MONITOR %s SET CREDIT_QUOTA = %d", name, creditQuota)
	return s.exec(ctx, stmt)
}

// DropResourceMonitor issues DROP RESOURCE MONITOR
func (s *Service) DropResourceMonitor(ctx context.Context, name string, ifExists bool) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	stmt := "DROP RESOURCE MONITOR "
	if ifExists {
		stmt += "IF EXISTS "
	}
	return s.exec(ctx, stmt+name)
}

// ListResourceMonitors runs SHOW RESOURCE MONITORS and parses the result
func (s *Service) ListResourceMonitors(ctx context.Context, like string) ([]MonitorInfo, error) {
	stmt := "SHOW RESOURCE MONITORS"
	if like != "" {
		stmt += fmt.Sprintf(" LIKE '%s'", escapeStringLiteral(like))
	}

	rows, err := s.queryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	named, err := scanNamedRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource monitor list: %w", err)
	}

	monitors := make([]MonitorInfo, 0, len(named))
	for _, row := range named {
		monitors = append(monitors, MonitorInfo{
			Name:             row["name"],
			CreditQuota:      row["credit_quota"],
			UsedCredits:      row["used_credits"],
			RemainingCredits: row["remaining_credits"],
			Level:            row["level"],
			Frequency:        row["frequency"],
			StartTime:        row["start_time"],
			EndTime:          row["end_time"],
			CreatedOn:        row["created_on"],
		})
	}

	return monitors, nil
}
