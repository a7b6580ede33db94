package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"admin-console-go/internal/admin"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetColumnSeparator("|")
	table.SetAutoWrapText(false)
	return table
}

func statusLabel(s admin.UserStatus) string {
	switch s {
	case admin.StatusActive:
		return color.GreenString(string(s))
	case admin.StatusBlocked:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func printUsers(w io.Writer, page *admin.UsersPage) {
	table := newTable(w, "ID", "Name", "Email", "Status", "Followers", "Following")
	for _, u := range page.Items {
		table.Append([]string{
			u.ID,
			u.Name,
			u.Email,
			statusLabel(u.Status),
			strconv.Itoa(u.FollowersCount),
			strconv.Itoa(u.FollowingCount),
		})
	}
	table.Render()
	fmt.Fprintf(w, "Page %d (limit %d), %d users total\n", page.Page, page.Limit, page.Total)
}

func printUser(w io.Writer, u *admin.User) {
	table := newTable(w, "Field", "Value")
	username := u.Username
	if username == "" {
		username = "N/A"
	}
	bio := u.Bio
	if bio == "" {
		bio = "No bio provided."
	}
	table.AppendBulk([][]string{
		{"ID", u.ID},
		{"Name", u.Name},
		{"Username", username},
		{"Email", u.Email},
		{"Role", u.Role},
		{"Status", statusLabel(u.Status)},
		{"Verified", strconv.FormatBool(u.IsVerified)},
		{"Profile completed", strconv.FormatBool(u.IsProfileCompleted)},
		{"Followers", strconv.Itoa(u.FollowersCount)},
		{"Following", strconv.Itoa(u.FollowingCount)},
		{"Bio", bio},
	})
	table.Render()
}

func printDocument(w io.Writer, doc *admin.Document) {
	if doc.Version != "" {
		fmt.Fprintf(w, "Version: %s\n", doc.Version)
	}
	if doc.Language != "" || doc.Platform != "" {
		fmt.Fprintf(w, "Language: %s  Platform: %s\n", doc.Language, doc.Platform)
	}
	if ts := doc.LastSaved(); ts != nil {
		fmt.Fprintf(w, "Last saved: %s\n", ts.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, doc.Content)
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.GreenString(format, args...))
}
