package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/kazz187/housekeeping/internal/client"
	"github.com/kazz187/housekeeping/internal/room"
	"github.com/kazz187/housekeeping/internal/server"
)

var (
	app     = kingpin.New("housekeeping", "Housekeeping task board client")
	baseURL = app.Flag("server", "Server base URL").Default("http://localhost:3100").Envar("HOUSEKEEPING_SERVER").String()
	timeout = app.Flag("timeout", "Request timeout").Default("30s").Duration()

	tasksCmd      = app.Command("tasks", "List tasks")
	tasksSearch   = tasksCmd.Flag("search", "Match room number, room type or staff name").Short('s').String()
	tasksStatus   = tasksCmd.Flag("status", "all, pending, in-progress, completed or exception").Default("all").String()
	tasksPriority = tasksCmd.Flag("priority", "low, medium or high").String()
	tasksStaff    = tasksCmd.Flag("staff", "Assigned staff id").String()
	tasksSort     = tasksCmd.Flag("sort", "created, -created or priority").String()
	tasksPage     = tasksCmd.Flag("page", "Zero-based page").Int()
	tasksSize     = tasksCmd.Flag("page-size", "Items per page").Int()

	showCmd = app.Command("show", "Show a task")
	showID  = showCmd.Arg("id", "Task ID").Required().String()

	createCmd      = app.Command("create", "Create a cleaning task")
	createRoom     = createCmd.Arg("room", "Room number").Required().String()
	createType     = createCmd.Arg("type", "Room type").Required().String()
	createPriority = createCmd.Flag("priority", "low, medium or high").Short('p').String()
	createNotes    = createCmd.Flag("notes", "Notes").String()

	startCmd   = app.Command("start", "Start a pending task")
	startID    = startCmd.Arg("id", "Task ID").Required().String()
	startStaff = startCmd.Arg("staff", "Staff ID").Required().String()

	completeCmd = app.Command("complete", "Complete an in-progress task")
	completeID  = completeCmd.Arg("id", "Task ID").Required().String()

	exceptionCmd    = app.Command("exception", "Report an exception on an open task")
	exceptionID     = exceptionCmd.Arg("id", "Task ID").Required().String()
	exceptionReason = exceptionCmd.Arg("reason", "Reason").Required().String()

	priorityCmd   = app.Command("priority", "Change a task's priority")
	priorityID    = priorityCmd.Arg("id", "Task ID").Required().String()
	priorityValue = priorityCmd.Arg("priority", "low, medium or high").Required().String()

	notesCmd   = app.Command("notes", "Replace a task's notes")
	notesID    = notesCmd.Arg("id", "Task ID").Required().String()
	notesValue = notesCmd.Arg("notes", "Notes").Required().String()

	autoAssignCmd = app.Command("auto-assign", "Assign pending tasks to eligible staff")

	autoGenerateCmd  = app.Command("auto-generate", "Create tasks from a room feed")
	autoGenerateFeed = autoGenerateCmd.Arg("feed", "Room feed YAML file").Required().ExistingFile()

	staffCmd       = app.Command("staff", "List staff")
	staffStatus    = staffCmd.Flag("status", "available, busy or break").String()
	staffSetCmd    = app.Command("staff-status", "Set a staff member's status")
	staffSetID     = staffSetCmd.Arg("id", "Staff ID").Required().String()
	staffSetStatus = staffSetCmd.Arg("status", "available or break").Required().String()

	historyCmd    = app.Command("history", "List completed and excepted tasks")
	historySearch = historyCmd.Flag("search", "Match room number or staff name").Short('s').String()
	historyStatus = historyCmd.Flag("status", "all, completed or exception").String()
	historyNewest = historyCmd.Flag("newest", "Newest first").Bool()
	historyPage   = historyCmd.Flag("page", "Zero-based page").Int()

	summaryCmd = app.Command("summary", "Show board counters")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := dispatch(ctx, client.New(*baseURL), command); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, c *client.Client, command string) error {
	switch command {
	case tasksCmd.FullCommand():
		page, err := c.ListTasks(ctx, client.TaskQuery{
			Search:   *tasksSearch,
			Status:   *tasksStatus,
			Priority: *tasksPriority,
			StaffID:  *tasksStaff,
			Sort:     *tasksSort,
			Page:     *tasksPage,
			PageSize: *tasksSize,
		})
		if err != nil {
			return err
		}
		printTasks(os.Stdout, page)
	case showCmd.FullCommand():
		t, err := c.GetTask(ctx, *showID)
		if err != nil {
			return err
		}
		printTask(os.Stdout, t)
	case createCmd.FullCommand():
		t, err := c.CreateTask(ctx, server.CreateTaskRequest{
			RoomNumber: *createRoom,
			RoomType:   *createType,
			Priority:   *createPriority,
			Notes:      *createNotes,
		})
		if err != nil {
			return err
		}
		printTask(os.Stdout, t)
	case startCmd.FullCommand():
		t, err := c.StartTask(ctx, *startID, *startStaff)
		if err != nil {
			return err
		}
		printTask(os.Stdout, t)
	case completeCmd.FullCommand():
		t, err := c.CompleteTask(ctx, *completeID)
		if err != nil {
			return err
		}
		printTask(os.Stdout, t)
	case exceptionCmd.FullCommand():
		t, err := c.ReportException(ctx, *exceptionID, *exceptionReason)
		if err != nil {
			return err
		}
		printTask(os.Stdout, t)
	case priorityCmd.FullCommand():
		t, err := c.SetPriority(ctx, *priorityID, *priorityValue)
		if err != nil {
			return err
		}
		printTask(os.Stdout, t)
	case notesCmd.FullCommand():
		t, err := c.SetNotes(ctx, *notesID, *notesValue)
		if err != nil {
			return err
		}
		printTask(os.Stdout, t)
	case autoAssignCmd.FullCommand():
		res, err := c.AutoAssign(ctx)
		if err != nil {
			return err
		}
		printAssignResult(os.Stdout, res)
	case autoGenerateCmd.FullCommand():
		rooms, err := room.LoadFeed(*autoGenerateFeed)
		if err != nil {
			return err
		}
		res, err := c.AutoGenerate(ctx, rooms)
		if err != nil {
			return err
		}
		printGenerateResult(os.Stdout, res)
	case staffCmd.FullCommand():
		page, err := c.ListStaff(ctx, *staffStatus, 0, 100)
		if err != nil {
			return err
		}
		printStaff(os.Stdout, page)
	case staffSetCmd.FullCommand():
		m, err := c.SetStaffStatus(ctx, *staffSetID, *staffSetStatus)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s is now %s\n", m.ID, m.Name, staffStatusColor(string(m.Status)))
	case historyCmd.FullCommand():
		page, err := c.ListHistory(ctx, client.HistoryQuery{
			Search: *historySearch,
			Status: *historyStatus,
			Newest: *historyNewest,
			Page:   *historyPage,
		})
		if err != nil {
			return err
		}
		printHistory(os.Stdout, page, time.Local)
	case summaryCmd.FullCommand():
		sum, err := c.Summary(ctx)
		if err != nil {
			return err
		}
		printSummary(os.Stdout, sum)
	}
	return nil
}
