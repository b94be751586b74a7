package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"frostline/internal/snowflake"
	"frostline/internal/walkthrough"
)

// Reporter renders admin command output as tables
type Reporter struct {
	useColor bool
}

// NewReporter creates a new reporter
func NewReporter(useColor bool) *Reporter {
	return &Reporter{useColor: useColor}
}

// RenderWarehouses renders SHOW WAREHOUSES output
func (r *Reporter) RenderWarehouses(warehouses []snowflake.WarehouseInfo) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Name", "State", "Size", "Clusters", "Auto Suspend", "Auto Resume", "Monitor", "Comment"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, wh := range warehouses {
		state := wh.State
		if r.useColor {
			switch strings.ToUpper(wh.State) {
			case "STARTED":
				state = color.GreenString(wh.State)
			case "SUSPENDED":
				state = color.YellowString(wh.State)
			case "RESIZING":
				state = color.CyanString(wh.State)
			}
		}

		clusters := fmt.Sprintf("%d-%d", wh.MinClusterCount, wh.MaxClusterCount)
		table.Append([]string{
			wh.Name,
			state,
			wh.Size,
			clusters,
			fmt.Sprintf("%ds", wh.AutoSuspend),
			fmt.Sprintf("%t", wh.AutoResume),
			wh.ResourceMonitor,
			wh.Comment,
		})
	}

	table.Render()
	return buf.String()
}

// RenderMonitors renders SHOW RESOURCE MONITORS output
func (r *Reporter) RenderMonitors(monitors []snowflake.MonitorInfo) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Name", "Quota", "Used", "Remaining", "Level", "Frequency", "Start"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, mon := range monitors {
		used := mon.UsedCredits
		if r.useColor && used != "" && used != "0" {
			used = color.YellowString(used)
		}

		table.Append([]string{
			mon.Name,
			mon.CreditQuota,
			used,
			mon.RemainingCredits,
			mon.Level,
			mon.Frequency,
			mon.StartTime,
		})
	}

	table.Render()
	return buf.String()
}

// RenderParameters renders SHOW PARAMETERS output
func (r *Reporter) RenderParameters(params []snowflake.Parameter) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Key", "Value", "Default", "Level"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, p := range params {
		value := p.Value
		if r.useColor && p.Value != p.Default {
			value = color.CyanString(p.Value)
		}

		table.Append([]string{p.Key, value, p.Default, p.Level})
	}

	table.Render()
	return buf.String()
}

// RenderResultSet renders query results with a trailing row summary
func (r *Reporter) RenderResultSet(result *snowflake.ResultSet) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader(result.Columns)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, row := range result.Rows {
		table.Append(row)
	}
	table.Render()

	summary := fmt.Sprintf("%d rows in %s", result.RowCount(), result.Duration.Round(time.Millisecond))
	if result.Truncated {
		summary += " (truncated)"
	}
	buf.WriteString(ColorDim(summary) + "\n")

	return buf.String()
}

// RenderStep renders one walkthrough step as a status line
func (r *Reporter) RenderStep(res walkthrough.StepResult) string {
	var marker, name string

	switch res.Status {
	case walkthrough.StatusOK:
		marker = ColorSuccess("✓")
		name = res.Name
	case walkthrough.StatusWarning:
		marker = ColorWarning("⚠")
		name = res.Name
	case walkthrough.StatusSkipped:
		marker = ColorDim("-")
		name = ColorDim(res.Name)
	default:
		marker = ColorError("✗")
		name = res.Name
	}

	line := fmt.Sprintf("%s %s (%s)", marker, name, formatDuration(res.Duration))
	if res.Detail != "" {
		line += "\n    " + ColorDim(res.Detail)
	}
	if res.Status == walkthrough.StatusFailed && res.Err != nil {
		line += "\n    " + ColorError(res.Err.Error())
	}

	return line
}
