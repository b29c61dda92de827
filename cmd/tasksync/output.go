package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tasksync/internal/format"
	"tasksync/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeProjectList(projects []models.Project) error {
	for _, p := range projects {
		if err := writePlain("%s %s [%s] - %s\n", syncMarker(p.Status, p.ServerID), p.ID, p.Status, p.Name); err != nil {
			return err
		}
	}
	return nil
}

func writeContextList(contexts []models.Context) error {
	for _, c := range contexts {
		if err := writePlain("%s %s [%s] - %s\n", syncMarker(c.Status, c.ServerID), c.ID, c.Status, c.Name); err != nil {
			return err
		}
	}
	return nil
}

func writeTaskList(tasks []models.Task) error {
	for _, t := range tasks {
		if err := writePlain("%s\n", formatTaskLine(t)); err != nil {
			return err
		}
	}
	return nil
}

func writeTaskDetailsList(tasks []models.TaskDetails) error {
	for _, t := range tasks {
		line := fmt.Sprintf("%s %s [%s] [%s] - %s",
			syncMarker(t.Status, t.ServerID), t.ID, models.PriorityName(t.Priority), t.Status, t.Name)
		if t.ProjectName != "" {
			line += fmt.Sprintf(" (project: %s)", t.ProjectName)
		}
		if len(t.ContextNames) > 0 {
			line += fmt.Sprintf(" @%s", strings.Join(t.ContextNames, " @"))
		}
		if err := writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func writeTransactionList(txns []models.Transaction) error {
	for _, txn := range txns {
		marker := " "
		if txn.Stalled() {
			marker = "!"
		}
		line := fmt.Sprintf("%s %s %s %s/%s [%s] retries=%d created=%s",
			marker, txn.ID, txn.Type, txn.EntityType, txn.EntityID, txn.Status, txn.Retries, formatMillis(txn.CreatedAt))
		if err := writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func formatTaskLine(t models.Task) string {
	return fmt.Sprintf("%s %s [P%d] [%s] - %s", syncMarker(t.Status, t.ServerID), t.ID, t.Priority, t.Status, t.Name)
}

func syncMarker(status models.EntityStatus, serverID string) string {
	if status == models.StatusSynced && serverID != "" {
		return "●"
	}
	return "○"
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
