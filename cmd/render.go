package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"voiceguard/internal/cascade"
	"voiceguard/internal/domain"
)

func writeCascade(out io.Writer, rows []domain.CascadeRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		actions := strings.Join(lo.Map(row.Actions, func(a domain.Action, _ int) string { return string(a) }), ", ")
		if row.Bypassed {
			actions += " (bypassed)"
		}
		tier := "-"
		if row.Tier > 0 {
			tier = strconv.Itoa(row.Tier)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", tier, row.Label, row.Name, actions)
	}
	w.Flush()
}

func writeContacts(out io.Writer, contacts []domain.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(out, "No contacts.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tPHONE")
	for _, c := range contacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Type, c.Name, c.Phone)
	}
	w.Flush()
}

func writeLogs(out io.Writer, logs []domain.LogEntry) {
	if len(logs) == 0 {
		fmt.Fprintln(out, "No incidents in the last 7 days.")
		return
	}
	for i, entry := range logs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s %s  %s\n", entry.Date, entry.Time, entry.Type)
		writeCascade(out, cascade.FromLog(entry))
	}
}

func writeSession(out io.Writer, session domain.Session, active bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Email\t%s\n", session.Email)
	fmt.Fprintf(w, "Plan\t%s\n", session.PlanType)
	if session.PlanType == domain.PlanTrial {
		fmt.Fprintf(w, "Trial\t%s to %s\n", session.TrialStartDate, session.TrialEndDate)
	}
	fmt.Fprintf(w, "Active\t%t\n", active)
	fmt.Fprintf(w, "Microphone\t%t\n", session.PermissionsGranted.Microphone)
	fmt.Fprintf(w, "Location\t%t\n", session.PermissionsGranted.Location)
	w.Flush()
}
