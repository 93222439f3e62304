package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/kazz187/housekeeping/internal/engine"
	"github.com/kazz187/housekeeping/internal/history"
	"github.com/kazz187/housekeeping/internal/query"
	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
)

const timeLayout = "2006-01-02 15:04"

func taskStatusColor(s string) string {
	switch task.Status(s) {
	case task.StatusPending:
		return color.YellowString(s)
	case task.StatusInProgress:
		return color.BlueString(s)
	case task.StatusCompleted:
		return color.GreenString(s)
	case task.StatusException:
		return color.RedString(s)
	}
	return s
}

func priorityColor(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return color.New(color.FgRed, color.Bold).Sprint(p)
	case task.PriorityLow:
		return color.New(color.Faint).Sprint(p)
	}
	return string(p)
}

func staffStatusColor(s string) string {
	switch staff.Status(s) {
	case staff.StatusAvailable:
		return color.GreenString(s)
	case staff.StatusBusy:
		return color.YellowString(s)
	case staff.StatusBreak:
		return color.CyanString(s)
	}
	return s
}

func pageFooter(w io.Writer, page, totalPages, totalItems int) {
	if totalPages == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	fmt.Fprintf(w, "page %d/%d, %d total\n", page+1, totalPages, totalItems)
}

func printTasks(w io.Writer, p *query.Page[query.TaskView]) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOM\tTYPE\tSTATUS\tPRIORITY\tSTAFF\tCREATED")
	for _, v := range p.Items {
		staffName := v.AssignedStaffName
		if staffName == "" {
			staffName = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.RoomNumber, v.RoomType, taskStatusColor(string(v.Status)), priorityColor(v.Priority),
			staffName, v.CreatedAt.Local().Format(timeLayout))
	}
	tw.Flush()
	pageFooter(w, p.Page, p.TotalPages, p.TotalItems)
}

func printTask(w io.Writer, t *task.Task) {
	fmt.Fprintf(w, "%s  room %s (%s)\n", color.New(color.Bold).Sprint(t.ID), t.RoomNumber, t.RoomType)
	fmt.Fprintf(w, "  status:   %s\n", taskStatusColor(string(t.Status)))
	fmt.Fprintf(w, "  priority: %s\n", priorityColor(t.Priority))
	if t.AssignedStaff != "" {
		fmt.Fprintf(w, "  staff:    %s\n", t.AssignedStaff)
	}
	fmt.Fprintf(w, "  created:  %s\n", t.CreatedAt.Local().Format(timeLayout))
	if t.StartedAt != nil {
		fmt.Fprintf(w, "  started:  %s\n", t.StartedAt.Local().Format(timeLayout))
	}
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "  closed:   %s\n", t.CompletedAt.Local().Format(timeLayout))
	}
	if t.Notes != "" {
		fmt.Fprintf(w, "  notes:    %s\n", t.Notes)
	}
	if t.ExceptionReason != "" {
		fmt.Fprintf(w, "  reason:   %s\n", color.RedString(t.ExceptionReason))
	}
}

func printAssignResult(w io.Writer, res *engine.AssignResult) {
	for _, a := range res.Assignments {
		fmt.Fprintf(w, "%s %s -> %s\n", color.GreenString("assigned"), a.TaskID, a.StaffID)
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "%s %s: %s\n", color.YellowString("skipped"), s.TaskID, s.Reason)
	}
	fmt.Fprintf(w, "%d assigned, %d skipped\n", len(res.Assignments), len(res.Skipped))
}

func printGenerateResult(w io.Writer, res *engine.GenerateResult) {
	for _, t := range res.Created {
		fmt.Fprintf(w, "%s %s for room %s (%s)\n", color.GreenString("created"), t.ID, t.RoomNumber, t.Priority)
	}
	for _, o := range res.Skipped {
		fmt.Fprintf(w, "%s room %s: %s\n", color.YellowString("skipped"), o.RoomID, o.Reason)
	}
	for _, o := range res.Failed {
		fmt.Fprintf(w, "%s room %s: %s\n", color.RedString("failed"), o.RoomID, o.Reason)
	}
	fmt.Fprintf(w, "%d created, %d skipped, %d failed\n", len(res.Created), len(res.Skipped), len(res.Failed))
}

func printStaff(w io.Writer, p *query.Page[staff.Staff]) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tSTATUS\tROOMS\tDONE TODAY")
	for _, m := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			m.ID, m.Name, m.Role, staffStatusColor(string(m.Status)), m.AssignedRooms, m.CompletedToday)
	}
	tw.Flush()
	pageFooter(w, p.Page, p.TotalPages, p.TotalItems)
}

func printHistory(w io.Writer, p *query.Page[history.Record], loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK\tROOM\tSTAFF\tSTATUS\tENDED\tDURATION\tNOTES")
	for _, r := range p.Items {
		duration := "-"
		if r.DurationKnown {
			duration = fmt.Sprintf("%dm", r.DurationMinutes)
		}
		staffName := r.Staff
		if staffName == "" {
			staffName = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.TaskID, r.RoomNumber, staffName, taskStatusColor(string(r.Status)),
			r.EndTime.In(loc).Format(timeLayout), duration, r.Notes)
	}
	tw.Flush()
	pageFooter(w, p.Page, p.TotalPages, p.TotalItems)
}

func printSummary(w io.Writer, s *query.Summary) {
	fmt.Fprintf(w, "%s %d  %s %d  %s %d  %s %d\n",
		taskStatusColor(string(task.StatusPending)), s.Pending,
		taskStatusColor(string(task.StatusInProgress)), s.InProgress,
		taskStatusColor(string(task.StatusCompleted)), s.Completed,
		taskStatusColor(string(task.StatusException)), s.Exception)
	fmt.Fprintf(w, "staff: %d available, %d busy, %d on break\n", s.AvailableStaff, s.BusyStaff, s.OnBreak)
}
