package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/emilian8/crew-call-frontend/internal/model"
)

// Text renderers for the list commands. JSON mode bypasses these and
// encodes the entities directly.

func renderEvents(events []model.Event) string {
	if len(events) == 0 {
		return "No events."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTARTS\tENDS\tACTIVE")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", ev.ID, ev.Title, ev.StartsAt, ev.EndsAt, ev.Active)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func renderMembers(members []model.Member) string {
	if len(members) == 0 {
		return "No members."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACTOR\tROLE")
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\n", m.Actor, m.Role)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func renderDuties(duties []model.Duty, archived func(dutyID string) bool) string {
	if len(duties) == 0 {
		return "No duties."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDUE\tSTATUS\tASSIGNEE")
	for _, d := range duties {
		status := string(d.Status)
		if archived != nil && archived(d.ID) {
			status += " (archived)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Title, d.DueAt, status, d.Assignee)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func renderTemplates(templates []model.Template) string {
	if len(templates) == 0 {
		return "No templates."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tMEMBERS\tDUTIES")
	for _, tpl := range templates {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tpl.ID, tpl.Title,
			strings.Join(tpl.Members, ","), strings.Join(tpl.StandardDuties, ","))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func renderNotifications(notifications []model.Notification) string {
	if len(notifications) == 0 {
		return "No notifications."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSUBJECT\tUNREAD")
	for _, n := range notifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", n.ID, n.CreatedAt, n.Subject, n.Unread)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
